// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mipidsi

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DataType is the packet data type sent in the data identifier byte.
type DataType byte

// DCS data types.
const (
	// DCSShortWrite is a DCS command without parameter.
	DCSShortWrite DataType = 0x05
	// DCSShortWriteParam is a DCS command with one parameter.
	DCSShortWriteParam DataType = 0x15
	// DCSLongWrite is a DCS command followed by any number of parameters.
	DCSLongWrite DataType = 0x39
)

func (t DataType) String() string {
	switch t {
	case DCSShortWrite:
		return "DCSShortWrite"
	case DCSShortWriteParam:
		return "DCSShortWriteParam"
	case DCSLongWrite:
		return "DCSLongWrite"
	default:
		return fmt.Sprintf("DataType(0x%02X)", byte(t))
	}
}

// Long reports whether packets of this type carry a word count and a
// payload instead of two data bytes.
func (t DataType) Long() bool {
	switch t & 0x0F {
	case 0x09, 0x0E:
		return true
	default:
		return false
	}
}

// Cmd is one command sent to the panel.
type Cmd struct {
	Type DataType
	// Ack requests an acknowledge from the peripheral after the packet.
	Ack bool
	// Wait is the settling delay the panel needs after this command before it
	// accepts the next one.
	Wait time.Duration
	// Payload starts with the DCS command byte. Short writes without
	// parameter may carry a trailing zero byte.
	Payload []byte
}

var (
	// ErrPayload is returned when a command payload does not match its data
	// type.
	ErrPayload = errors.New("mipidsi: payload length does not match data type")
)

func (c *Cmd) validate() error {
	n := len(c.Payload)
	switch {
	case c.Type == DCSShortWrite:
		if n == 2 && c.Payload[1] != 0 {
			return fmt.Errorf("%w: %s has a parameter", ErrPayload, c.Type)
		}
		if n != 1 && n != 2 {
			return fmt.Errorf("%w: %s with %d bytes", ErrPayload, c.Type, n)
		}
	case c.Type == DCSShortWriteParam:
		if n != 2 {
			return fmt.Errorf("%w: %s with %d bytes", ErrPayload, c.Type, n)
		}
	case c.Type.Long():
		if n == 0 || n > 0xFFFF {
			return fmt.Errorf("%w: %s with %d bytes", ErrPayload, c.Type, n)
		}
	default:
		if n > 2 {
			return fmt.Errorf("%w: %s with %d bytes", ErrPayload, c.Type, n)
		}
	}
	if c.Wait < 0 {
		return fmt.Errorf("mipidsi: negative wait %s", c.Wait)
	}
	return nil
}

func (c Cmd) clone() Cmd {
	c.Payload = append([]byte(nil), c.Payload...)
	return c
}

func (c Cmd) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s % X", c.Type, c.Payload)
	if c.Ack {
		b.WriteString(" ack")
	}
	if c.Wait != 0 {
		fmt.Fprintf(&b, " wait %s", c.Wait)
	}
	return b.String()
}

// Sequence is an immutable ordered list of commands.
//
// The zero value is an empty sequence.
type Sequence struct {
	cmds []Cmd
}

// NewSequence validates cmds and returns them as a Sequence. The payloads are
// copied, so the caller may reuse its buffers.
func NewSequence(cmds ...Cmd) (Sequence, error) {
	s := Sequence{cmds: make([]Cmd, 0, len(cmds))}
	for i := range cmds {
		if err := cmds[i].validate(); err != nil {
			return Sequence{}, fmt.Errorf("command %d: %w", i, err)
		}
		s.cmds = append(s.cmds, cmds[i].clone())
	}
	return s, nil
}

// MustSequence is like NewSequence but panics on invalid commands. It is
// meant for package level command tables.
func MustSequence(cmds ...Cmd) Sequence {
	s, err := NewSequence(cmds...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of commands.
func (s Sequence) Len() int {
	return len(s.cmds)
}

// At returns a copy of the i-th command.
func (s Sequence) At(i int) Cmd {
	return s.cmds[i].clone()
}

// Cmds returns a copy of the commands.
func (s Sequence) Cmds() []Cmd {
	out := make([]Cmd, len(s.cmds))
	for i := range s.cmds {
		out[i] = s.cmds[i].clone()
	}
	return out
}

// Wait returns the sum of the settling delays.
func (s Sequence) Wait() time.Duration {
	var d time.Duration
	for i := range s.cmds {
		d += s.cmds[i].Wait
	}
	return d
}

func (s Sequence) String() string {
	parts := make([]string, len(s.cmds))
	for i := range s.cmds {
		parts[i] = s.cmds[i].String()
	}
	return "[" + strings.Join(parts, "; ") + "]"
}
