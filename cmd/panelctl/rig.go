// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/GermanBionicSystems/mipipanel/blsim"
	"github.com/GermanBionicSystems/mipipanel/dsiserial"
	"github.com/GermanBionicSystems/mipipanel/mipidsi"
	"github.com/GermanBionicSystems/mipipanel/mipidsi/dsitest"
	"github.com/GermanBionicSystems/mipipanel/pulsebl"
	"github.com/GermanBionicSystems/mipipanel/sonypanel"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var (
	resetPin     = "GPIO49"
	backlightPin = "GPIO13"
	serialPort   = ""
	baud         = dsiserial.DefaultBaud
	spiPort      = ""
	channel      = 0
	maxLevel     = pulsebl.DefaultMaxLevel
	simulate     = false
	capture      = ""
	verbose      = false
)

func addRigFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&resetPin, "reset-pin", resetPin, "Panel reset GPIO")
	f.StringVar(&backlightPin, "backlight-pin", backlightPin, "Backlight enable GPIO")
	f.StringVar(&serialPort, "port", serialPort, "Serial device of a DSI bridge")
	f.IntVar(&baud, "baud", baud, "Serial bridge baud rate")
	f.StringVar(&spiPort, "spi", spiPort, "SPI port of a DSI bridge, used when --port is empty")
	f.IntVar(&channel, "channel", channel, "DSI channel of the panel, also its virtual channel")
	f.IntVar(&maxLevel, "max-level", maxLevel, "Number of backlight steps")
	f.BoolVar(&simulate, "sim", simulate, "Use emulated hardware")
	f.StringVar(&capture, "capture", capture, "With --sim, write the DSI packets to this file")
	f.BoolVarP(&verbose, "verbose", "v", verbose, "Log every pin and channel operation")
}

// rig is the hardware a command runs against.
type rig struct {
	host  sonypanel.Host
	panel *sonypanel.Dev
	bl    *pulsebl.Dev
	// sim is set in simulation mode.
	sim     *blsim.Dev
	closers []io.Closer
}

func openRig() (*rig, error) {
	if channel < 0 || channel > int(mipidsi.MaxVirtualChannel) {
		return nil, fmt.Errorf("channel %d out of range", channel)
	}
	r := &rig{}
	var (
		c   conn.Conn
		rst gpio.PinOut
		bl  gpio.PinOut
		err error
	)
	if simulate {
		c, rst, bl, err = r.simHardware()
	} else {
		c, rst, bl, err = r.hostHardware()
	}
	if err != nil {
		return nil, errors.Join(err, r.Close())
	}

	dsi, err := mipidsi.New(c, &mipidsi.Opts{VirtualChannel: byte(channel)})
	if err != nil {
		return nil, errors.Join(err, r.Close())
	}
	var ch mipidsi.Channel = dsi
	opts := &sonypanel.Opts{}
	if verbose {
		ch = &dsitest.Log{Channel: dsi}
		opts.Logger = log.Default()
	}
	if r.panel, err = r.host.Attach(channel, ch, rst, opts); err != nil {
		return nil, errors.Join(err, r.Close())
	}
	if r.bl, err = pulsebl.New(bl, &pulsebl.Opts{MaxLevel: maxLevel}); err != nil {
		return nil, errors.Join(err, r.Close())
	}
	return r, nil
}

func (r *rig) hostHardware() (conn.Conn, gpio.PinOut, gpio.PinOut, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, nil, err
	}
	rst := gpioreg.ByName(resetPin)
	if rst == nil {
		return nil, nil, nil, fmt.Errorf("unknown reset pin %q", resetPin)
	}
	bl := gpioreg.ByName(backlightPin)
	if bl == nil {
		return nil, nil, nil, fmt.Errorf("unknown backlight pin %q", backlightPin)
	}
	if verbose {
		rst = &gpiotest.LogPinIO{PinIO: rst}
	}
	if serialPort != "" {
		p, err := dsiserial.Open(serialPort, &dsiserial.Opts{Baud: baud})
		if err != nil {
			return nil, nil, nil, err
		}
		r.closers = append(r.closers, p)
		return p, rst, bl, nil
	}
	p, err := spireg.Open(spiPort)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening SPI: %w", err)
	}
	r.closers = append(r.closers, p)
	c, err := mipidsi.ConnectSPI(p)
	if err != nil {
		return nil, nil, nil, err
	}
	return c, rst, bl, nil
}

func (r *rig) simHardware() (conn.Conn, gpio.PinOut, gpio.PinOut, error) {
	w := io.Discard
	if capture != "" {
		f, err := os.Create(capture)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("creating capture: %w", err)
		}
		r.closers = append(r.closers, f)
		w = f
	}
	var rst gpio.PinIO = &gpiotest.Pin{N: "RST", Num: 49}
	if verbose {
		rst = &gpiotest.LogPinIO{PinIO: rst}
	}
	r.sim = blsim.New(&blsim.Opts{MaxLevel: maxLevel})
	return &conntest.RecordRaw{W: w}, rst, r.sim, nil
}

// Close releases the panel channel and closes the links, in reverse order.
func (r *rig) Close() error {
	var errs []error
	if r.panel != nil {
		errs = append(errs, r.panel.Halt())
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i].Close())
	}
	return errors.Join(errs...)
}

// withRig runs fn against a freshly opened rig.
func withRig(fn func(r *rig) error) error {
	r, err := openRig()
	if err != nil {
		return err
	}
	return errors.Join(fn(r), r.Close())
}
