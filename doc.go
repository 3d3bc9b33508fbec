// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mipipanel is a container for the Sony MIPI DSI panel drivers.
//
// The panel itself is controlled by package sonypanel, its backlight by
// package pulsebl. Commands travel over a mipidsi.Channel.
package mipipanel
