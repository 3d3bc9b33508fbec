// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sonypanel

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/GermanBionicSystems/mipipanel/common"
	"github.com/GermanBionicSystems/mipipanel/mipidsi"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// DCS commands
const (
	enterSleepMode byte = 0x10
	exitSleepMode  byte = 0x11
	setDisplayOff  byte = 0x28
	setDisplayOn   byte = 0x29
	setAddressMode byte = 0x36
)

// Reset line timing.
const (
	resetHigh   = 5 * time.Millisecond
	resetLow    = 5 * time.Millisecond
	resetSettle = 20 * time.Millisecond
)

// PowerOnSequence is sent after the reset pulse.
var PowerOnSequence = mipidsi.MustSequence(
	// The panel ignores writes until it has left sleep mode.
	mipidsi.Cmd{Type: mipidsi.DCSShortWrite, Wait: 140 * time.Millisecond, Payload: []byte{exitSleepMode, 0x00}},
	// Row/column exchange off, BGR order.
	mipidsi.Cmd{Type: mipidsi.DCSShortWriteParam, Payload: []byte{setAddressMode, 0x40}},
	mipidsi.Cmd{Type: mipidsi.DCSShortWrite, Payload: []byte{setDisplayOn, 0x00}},
)

// PowerOffSequence is sent before the reset line is pulled low.
var PowerOffSequence = mipidsi.MustSequence(
	mipidsi.Cmd{Type: mipidsi.DCSShortWrite, Payload: []byte{setDisplayOff, 0x00}},
	mipidsi.Cmd{Type: mipidsi.DCSShortWrite, Wait: 120 * time.Millisecond, Payload: []byte{enterSleepMode, 0x00}},
)

// Key identifies a framebuffer handle that is allowed to drive the panel.
const Key uint32 = 0x11161126

// Handle is the display device context the lifecycle code powers the panel
// for.
type Handle struct {
	Key uint32
}

// NewHandle returns a Handle carrying Key.
func NewHandle() *Handle {
	return &Handle{Key: Key}
}

var (
	// ErrInvalidDevice is returned when no device context was given, or when
	// a DSI channel cannot be claimed.
	ErrInvalidDevice = errors.New("sonypanel: invalid device")
	// ErrInvalidState is returned when the device context does not carry Key.
	ErrInvalidState = errors.New("sonypanel: invalid state")
)

// State is the power state of the panel.
type State uint8

// Power states.
const (
	Uninitialized State = iota
	Off
	// ResettingOn is held while the power on sequence runs, and stays set if
	// it failed midway.
	ResettingOn
	On
	// TurningOff is held while the power off sequence runs, and stays set if
	// it failed midway.
	TurningOff
)

const stateName = "UninitializedOffResettingOnOnTurningOff"

var stateIndex = [...]uint8{0, 13, 16, 27, 29, 39}

func (s State) String() string {
	if s >= State(len(stateIndex)-1) {
		return fmt.Sprintf("State(%d)", s)
	}
	return stateName[stateIndex[s]:stateIndex[s+1]]
}

// Opts is the configuration of the panel.
type Opts struct {
	// Delayer times the reset pulse. Defaults to common.HostDelay.
	Delayer common.Delayer
	// ResetDrive is the reset pad drive strength. Defaults to 2mA.
	ResetDrive physic.ElectricCurrent
	// Logger receives one line per power transition. Nil disables logging.
	Logger *log.Logger
}

// Dev is a handle to the panel.
type Dev struct {
	mu    sync.Mutex
	ch    mipidsi.Channel
	rst   gpio.PinOut
	delay common.Delayer
	drive physic.ElectricCurrent
	log   *log.Logger
	state State

	release func()
}

// New returns a panel driven over ch with its reset line on rst.
//
// opts can be nil to use defaults.
func New(ch mipidsi.Channel, rst gpio.PinOut, opts *Opts) (*Dev, error) {
	if ch == nil || rst == nil {
		return nil, errors.New("sonypanel: command channel and reset pin are required")
	}
	if opts == nil {
		opts = &Opts{}
	}
	d := &Dev{
		ch:    ch,
		rst:   rst,
		delay: opts.Delayer,
		drive: opts.ResetDrive,
		log:   opts.Logger,
	}
	if d.delay == nil {
		d.delay = &common.HostDelay{}
	}
	if d.drive == 0 {
		d.drive = 2 * physic.MilliAmpere
	}
	return d, nil
}

// State returns the current power state.
func (d *Dev) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Reset pulses the reset line: high for 5ms, low for 5ms, then high with
// 20ms for the panel to come out of reset.
//
// The delays always run to completion, even if a pin operation failed. The
// first pin error is returned.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reset()
}

func (d *Dev) reset() error {
	eh := errorHandler{d: d}

	eh.rstConfigure(common.Output)
	eh.rstOut(gpio.High)
	d.delay.Sleep(resetHigh)
	eh.rstOut(gpio.Low)
	d.delay.Sleep(resetLow)
	eh.rstOut(gpio.High)
	d.delay.Sleep(resetSettle)

	return eh.err
}

// PowerOn resets the panel and sends PowerOnSequence.
//
// h must be the device context the panel is being enabled for. Calling
// PowerOn on a panel that is already on runs the whole sequence again.
func (d *Dev) PowerOn(h *Handle) error {
	if err := check(h); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state = ResettingOn
	if err := d.reset(); err != nil {
		return wrap(err)
	}
	if err := d.ch.Send(PowerOnSequence); err != nil {
		return wrap(err)
	}
	d.state = On
	d.logf("on")
	return nil
}

// PowerOff sends PowerOffSequence and then holds the reset line low with the
// pull-down enabled.
//
// Calling PowerOff on a panel that is already off runs the whole sequence
// again.
func (d *Dev) PowerOff(h *Handle) error {
	if err := check(h); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state = TurningOff
	if err := d.ch.Send(PowerOffSequence); err != nil {
		return wrap(err)
	}
	eh := errorHandler{d: d}
	eh.rstConfigure(common.OutputPullDown)
	eh.rstOut(gpio.Low)
	if eh.err != nil {
		return wrap(eh.err)
	}
	d.state = Off
	d.logf("off")
	return nil
}

// Halt releases the DSI channel claimed through Host.Attach. It does not
// change the power state of the panel.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.release != nil {
		d.release()
		d.release = nil
	}
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("sonypanel.Dev{%s, %s}", d.ch, d.rst)
}

func (d *Dev) logf(format string, v ...interface{}) {
	if d.log != nil {
		d.log.Printf("sonypanel: "+format, v...)
	}
}

func check(h *Handle) error {
	if h == nil {
		return ErrInvalidDevice
	}
	if h.Key != Key {
		return fmt.Errorf("%w: key 0x%08X", ErrInvalidState, h.Key)
	}
	return nil
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("sonypanel: %w", err)
}
