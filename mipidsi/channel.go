// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mipidsi

import (
	"errors"
	"fmt"

	"github.com/GermanBionicSystems/mipipanel/common"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Ack is the byte a link answers with when a command requested an
// acknowledge and the peripheral accepted it.
const Ack byte = 0x06

var (
	// ErrTransport wraps every failure to deliver a command.
	ErrTransport = errors.New("mipidsi: transport error")
	// ErrNack is returned when the peripheral did not acknowledge a command.
	ErrNack = errors.New("mipidsi: command not acknowledged")
)

// Channel sends command sequences to a panel.
//
// Send transmits the commands in order and honors each command's Wait before
// the next one, including after the last one. Failures are wrapped with
// ErrTransport; commands already sent are not rolled back.
type Channel interface {
	Send(s Sequence) error
}

// Opts is the configuration of a ConnChannel.
type Opts struct {
	// VirtualChannel addresses the panel on the link, 0 to 3.
	VirtualChannel byte
	// Delayer honors the command waits. Defaults to common.HostDelay.
	Delayer common.Delayer
}

// ConnChannel is a Channel that writes encoded packets to a conn.Conn, like
// an SPI or UART attached DSI bridge.
type ConnChannel struct {
	c     conn.Conn
	vc    byte
	delay common.Delayer
	buf   []byte
}

// New returns a Channel sending packets over c.
//
// opts can be nil to use virtual channel 0.
func New(c conn.Conn, opts *Opts) (*ConnChannel, error) {
	if c == nil {
		return nil, errors.New("mipidsi: nil connection")
	}
	if opts == nil {
		opts = &Opts{}
	}
	if opts.VirtualChannel > MaxVirtualChannel {
		return nil, fmt.Errorf("mipidsi: virtual channel %d out of range", opts.VirtualChannel)
	}
	d := opts.Delayer
	if d == nil {
		d = &common.HostDelay{}
	}
	return &ConnChannel{c: c, vc: opts.VirtualChannel, delay: d}, nil
}

// NewSPI returns a Channel sending packets to a DSI bridge on an SPI port.
func NewSPI(p spi.Port, opts *Opts) (*ConnChannel, error) {
	c, err := ConnectSPI(p)
	if err != nil {
		return nil, err
	}
	return New(c, opts)
}

// ConnectSPI connects to a DSI bridge on an SPI port at the bridge's speed
// and mode.
func ConnectSPI(p spi.Port) (spi.Conn, error) {
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("mipidsi: %w", err)
	}
	return c, nil
}

// Send implements Channel.
func (ch *ConnChannel) Send(s Sequence) error {
	for i := range s.cmds {
		c := &s.cmds[i]
		var err error
		ch.buf, err = AppendPacket(ch.buf[:0], ch.vc, *c)
		if err != nil {
			return fmt.Errorf("%w: command %d: %w", ErrTransport, i, err)
		}
		if err := ch.c.Tx(ch.buf, nil); err != nil {
			return fmt.Errorf("%w: command %d (%s): %w", ErrTransport, i, c.Type, err)
		}
		if c.Ack {
			var r [1]byte
			if err := ch.c.Tx(nil, r[:]); err != nil {
				return fmt.Errorf("%w: command %d (%s) acknowledge: %w", ErrTransport, i, c.Type, err)
			}
			if r[0] != Ack {
				return fmt.Errorf("%w: command %d (%s) answered 0x%02X: %w", ErrTransport, i, c.Type, r[0], ErrNack)
			}
		}
		if c.Wait > 0 {
			ch.delay.Sleep(c.Wait)
		}
	}
	return nil
}

func (ch *ConnChannel) String() string {
	return fmt.Sprintf("mipidsi.ConnChannel{%s, vc: %d}", ch.c, ch.vc)
}

var _ Channel = &ConnChannel{}
