// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package blsim emulates a pulse counting backlight controller and shows its
// brightness on the terminal (stdout) using ANSI color codes.
//
// Useful while you are waiting for your panel to come by mail: connect a
// pulsebl.Dev to a blsim.Dev instead of a GPIO pin.
package blsim

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Opts represents the options available for this emulator.
type Opts struct {
	// MaxLevel is the number of brightness steps. Defaults to 32.
	MaxLevel int
	// Latch is how long the line must stay high before a new pulse train
	// starts. Defaults to 500µs.
	Latch time.Duration
	// X is the width of the bar in cells. Defaults to MaxLevel.
	X       int
	Palette *ansi256.Palette
	// W defaults to a colorable stdout.
	W     io.Writer
	Clock clockwork.Clock // If nil, real clock will be used.

	_ struct{}
}

// Dev is a backlight controller emulator. It implements gpio.PinOut and is
// meant to be used as the enable line.
type Dev struct {
	mu      sync.Mutex
	w       io.Writer
	max     int
	x       int
	latch   time.Duration
	clock   clockwork.Clock
	palette ansi256.Palette

	l        gpio.Level
	lastUp   time.Time
	lastDown time.Time
	pulses   int

	buf bytes.Buffer
}

// New returns a Dev that displays at the console.
//
// opts can be nil to use defaults.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &Opts{}
	}
	d := &Dev{
		w:     opts.W,
		max:   opts.MaxLevel,
		x:     opts.X,
		latch: opts.Latch,
		clock: opts.Clock,
	}
	if d.max <= 0 {
		d.max = 32
	}
	if d.x <= 0 {
		d.x = d.max
	}
	if d.latch <= 0 {
		d.latch = 500 * time.Microsecond
	}
	if d.clock == nil {
		d.clock = clockwork.NewRealClock()
	}
	if d.w == nil {
		d.w = colorable.NewColorableStdout()
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d.palette = *p
	return d
}

func (d *Dev) String() string {
	return "BacklightSim"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the console is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Name implements pin.Pin.
func (d *Dev) Name() string {
	return "BL_EN"
}

// Number implements pin.Pin.
func (d *Dev) Number() int {
	return -1
}

// Function implements pin.Pin.
//
// Deprecated: returns "Out"
func (d *Dev) Function() string {
	return "Out"
}

// Out implements gpio.PinOut.
//
// An edge after the line held its level for longer than the latch time
// starts a new pulse train. Every rising edge counts one pulse.
func (d *Dev) Out(l gpio.Level) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.clock.Now()
	switch {
	case l == d.l:
	case l == gpio.Low:
		if now.Sub(d.lastUp) > d.latch {
			d.pulses = 0
		}
		d.lastDown = now
	default:
		if now.Sub(d.lastDown) > d.latch {
			d.pulses = 0
		}
		d.pulses++
		d.lastUp = now
	}
	d.l = l
	return nil
}

// PWM implements gpio.PinOut.
//
// The controller has no PWM input.
func (d *Dev) PWM(duty gpio.Duty, f physic.Frequency) error {
	return fmt.Errorf("%s: PWM is not supported", d)
}

// Level returns the brightness decoded from the pulses seen so far. The
// controller is off while the line is low.
func (d *Dev) Level() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.level()
}

func (d *Dev) level() int {
	if d.l == gpio.Low {
		return 0
	}
	if d.pulses <= 1 {
		return d.max
	}
	level := d.max - (d.pulses - 1)
	if level < 1 {
		level = 1
	}
	return level
}

// Refresh draws the current brightness as a bar on the console.
func (d *Dev) Refresh() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	level := d.level()
	lit := level * d.x / d.max
	v := byte(255 * level / d.max)
	on := color.NRGBA{v, v, v, 255}
	off := color.NRGBA{0, 0, 0, 255}

	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < d.x; i++ {
		c := off
		if i < lit {
			c = on
		}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = fmt.Fprintf(&d.buf, "\033[0m %2d/%d ", level, d.max)
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ gpio.PinOut = &Dev{}
var _ fmt.Stringer = &Dev{}
