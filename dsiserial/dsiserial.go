// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dsiserial reaches a MIPI DSI bridge over a serial line.
//
// The bridge forwards every packet it receives on the UART to the panel
// unchanged. When a command requests an acknowledge, the bridge answers with
// a single byte once the panel has accepted the packet.
//
// Port implements conn.Conn, so it is used with mipidsi.New:
//
//	p, err := dsiserial.Open("/dev/ttyUSB0", nil)
//	ch, err := mipidsi.New(p, nil)
package dsiserial

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"periph.io/x/conn/v3"
)

// DefaultBaud is the bridge's factory line speed.
const DefaultBaud = 115200

// ErrTimeout is returned when the bridge does not answer in time.
var ErrTimeout = errors.New("dsiserial: read timeout")

// Opts is the serial line configuration.
type Opts struct {
	// Baud defaults to DefaultBaud.
	Baud int
	// ReadTimeout bounds the wait for each answer byte. Defaults to 500ms.
	ReadTimeout time.Duration
}

// Port is a DSI bridge attached to a serial port.
type Port struct {
	mu   sync.Mutex
	p    serial.Port
	name string
}

// Open opens the serial device name, 8N1.
//
// opts can be nil to use defaults.
func Open(name string, opts *Opts) (*Port, error) {
	if opts == nil {
		opts = &Opts{}
	}
	baud := opts.Baud
	if baud == 0 {
		baud = DefaultBaud
	}
	timeout := opts.ReadTimeout
	if timeout == 0 {
		timeout = 500 * time.Millisecond
	}
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("dsiserial: opening %s: %w", name, err)
	}
	if err := p.SetReadTimeout(timeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("dsiserial: %w", err)
	}
	return New(p, name), nil
}

// New wraps an already opened serial port.
func New(p serial.Port, name string) *Port {
	return &Port{p: p, name: name}
}

func (p *Port) String() string {
	return "dsiserial(" + p.name + ")"
}

// Tx implements conn.Conn.
//
// w is written and drained before r is filled from the answer of the bridge.
func (p *Port) Tx(w, r []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.p == nil {
		return errors.New("dsiserial: port closed")
	}
	for len(w) != 0 {
		n, err := p.p.Write(w)
		if err != nil {
			return fmt.Errorf("dsiserial: writing: %w", err)
		}
		w = w[n:]
	}
	if err := p.p.Drain(); err != nil {
		return fmt.Errorf("dsiserial: draining: %w", err)
	}
	for len(r) != 0 {
		n, err := p.p.Read(r)
		if err != nil {
			return fmt.Errorf("dsiserial: reading: %w", err)
		}
		if n == 0 {
			return ErrTimeout
		}
		r = r[n:]
	}
	return nil
}

// Duplex implements conn.Conn.
func (p *Port) Duplex() conn.Duplex {
	return conn.Full
}

// Close closes the serial port.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.p == nil {
		return nil
	}
	err := p.p.Close()
	p.p = nil
	return err
}

var _ conn.Conn = &Port{}
