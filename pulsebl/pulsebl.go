// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pulsebl drives a backlight LED controller that has no brightness
// register and instead counts low pulses on its enable line.
//
// Each brightness change sends a train of short low pulses. The more pulses
// the controller sees before the line stays high, the dimmer it gets. Holding
// the line low switches the backlight off.
//
// The low phase of each pulse is timed with preemption suspended, so that the
// controller does not take a stretched pulse for a shutdown request.
package pulsebl

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GermanBionicSystems/mipipanel/common"
	"periph.io/x/conn/v3/gpio"
)

const (
	// DefaultMaxLevel is the number of brightness steps of the controller.
	DefaultMaxLevel = 32
	// LowTime is the minimum low phase of a pulse.
	LowTime = 3 * time.Microsecond
	// HighTime is the minimum high phase between two pulses.
	HighTime = 10 * time.Microsecond
)

// ErrInvalidLevel is returned for a level outside [0, MaxLevel].
var ErrInvalidLevel = errors.New("pulsebl: level out of range")

// Opts is the configuration of the backlight.
type Opts struct {
	// MaxLevel defaults to DefaultMaxLevel.
	MaxLevel int
	// CriticalSection brackets each pulse. Defaults to common.OSThread.
	CriticalSection common.CriticalSection
	// Delayer times the pulses. Defaults to common.HostDelay.
	Delayer common.Delayer
}

// Plan is the pulse train producing a level.
type Plan struct {
	Level int
	// Count is MaxLevel - Level, the step count the controller dims by.
	Count int
	// Pulses is the number of low pulses sent. The controller was calibrated
	// with one more pulse than Count, so Pulses is Count+1 for any non-zero
	// level and 0 when the backlight is off.
	Pulses int
	Low    time.Duration
	High   time.Duration
}

// Duration is the minimum time the pulse train takes.
func (p Plan) Duration() time.Duration {
	return time.Duration(p.Pulses) * (p.Low + p.High)
}

// Dev is a handle to the backlight controller.
type Dev struct {
	mu    sync.Mutex
	pin   gpio.PinOut
	max   int
	cs    common.CriticalSection
	delay common.Delayer
	level int
}

// New returns a backlight driven through the enable pin.
//
// opts can be nil to use defaults. The level is unknown until the first
// SetLevel; Level reports 0 until then.
func New(pin gpio.PinOut, opts *Opts) (*Dev, error) {
	if pin == nil {
		return nil, errors.New("pulsebl: enable pin is required")
	}
	if opts == nil {
		opts = &Opts{}
	}
	d := &Dev{
		pin:   pin,
		max:   opts.MaxLevel,
		cs:    opts.CriticalSection,
		delay: opts.Delayer,
	}
	if d.max == 0 {
		d.max = DefaultMaxLevel
	}
	if d.max < 0 {
		return nil, fmt.Errorf("pulsebl: invalid max level %d", d.max)
	}
	if d.cs == nil {
		d.cs = common.OSThread{}
	}
	if d.delay == nil {
		d.delay = &common.HostDelay{}
	}
	return d, nil
}

// MaxLevel returns the brightest level.
func (d *Dev) MaxLevel() int {
	return d.max
}

// Level returns the last level set.
func (d *Dev) Level() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.level
}

// Plan returns the pulse train SetLevel sends for level.
func (d *Dev) Plan(level int) (Plan, error) {
	if level < 0 || level > d.max {
		return Plan{}, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidLevel, level, d.max)
	}
	p := Plan{Level: level, Low: LowTime, High: HighTime}
	if level != 0 {
		p.Count = d.max - level
		p.Pulses = p.Count + 1
	}
	return p, nil
}

// SetLevel sets the brightness. 0 switches the backlight off, MaxLevel is the
// brightest.
//
// The call busy-waits for the whole pulse train, about 420µs at level 1.
func (d *Dev) SetLevel(level int) error {
	p, err := d.Plan(level)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if level == 0 {
		if err := d.pin.Out(gpio.Low); err != nil {
			return wrap(err)
		}
		d.level = 0
		return nil
	}
	for n := p.Pulses; n > 0; n-- {
		if err := d.pulse(p.Low); err != nil {
			return wrap(err)
		}
		d.delay.Spin(p.High)
	}
	d.level = level
	return nil
}

// pulse drives one low pulse. Preemption is suspended from the falling edge
// to the rising edge and restored right after it.
func (d *Dev) pulse(low time.Duration) error {
	leave := d.cs.Enter()
	defer leave()
	if err := d.pin.Out(gpio.Low); err != nil {
		return err
	}
	d.delay.Spin(low)
	return d.pin.Out(gpio.High)
}

// Halt switches the backlight off.
func (d *Dev) Halt() error {
	return d.SetLevel(0)
}

func (d *Dev) String() string {
	return fmt.Sprintf("pulsebl.Dev{%s, max: %d}", d.pin, d.max)
}

func wrap(err error) error {
	return fmt.Errorf("pulsebl: %w", err)
}
