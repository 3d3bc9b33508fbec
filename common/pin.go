// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// PinMode is the pad configuration of an output pin.
type PinMode uint8

const (
	// Output is a push-pull output without bias.
	Output PinMode = iota
	// OutputPullDown is a push-pull output with the pull-down enabled, so the
	// line stays low when the driver lets go of it.
	OutputPullDown
)

func (m PinMode) String() string {
	switch m {
	case Output:
		return "Output"
	case OutputPullDown:
		return "OutputPullDown"
	default:
		return "PinMode(?)"
	}
}

// Configurer is implemented by pins whose pad mode and drive strength can be
// set by the driver, like SoC pins behind a pin controller.
type Configurer interface {
	Configure(mode PinMode, drive physic.ElectricCurrent) error
}

// Configure sets the pad mode of p if p supports it. Pins that do not
// implement Configurer are left as is; gpio.PinOut.Out already switches them
// to output.
func Configure(p gpio.PinOut, mode PinMode, drive physic.ElectricCurrent) error {
	if c, ok := p.(Configurer); ok {
		return c.Configure(mode, drive)
	}
	return nil
}
