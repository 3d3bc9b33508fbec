// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sonypanel controls the power state of a Sony MIPI DSI command mode
// panel.
//
// Powering on pulses the reset line and sends exit-sleep, address mode and
// display-on commands. Powering off sends display-off and enter-sleep and
// then holds the reset line low through its pull-down.
//
// All operations block for the panel's settling delays (up to 170ms) and
// cannot be cancelled. Call them from a goroutine that tolerates sleeping.
//
// The panel backlight is independent, see package pulsebl.
package sonypanel
