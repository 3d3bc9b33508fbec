// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dsitest is meant to be used to test drivers over a fake
// mipidsi.Channel.
package dsitest

import (
	"fmt"
	"log"
	"sync"

	"github.com/GermanBionicSystems/mipipanel/common"
	"github.com/GermanBionicSystems/mipipanel/mipidsi"
)

// Record implements mipidsi.Channel and records every command sent to it.
type Record struct {
	sync.Mutex
	// Channel can be nil if only sends are being recorded.
	Channel mipidsi.Channel
	// Delayer honors the command waits when Channel is nil. If nil, waits
	// are recorded but not honored.
	Delayer common.Delayer
	// Err makes Send fail, wrapped in mipidsi.ErrTransport, before the
	// command at index FailAt is recorded.
	Err    error
	FailAt int

	Cmds []mipidsi.Cmd
}

func (r *Record) String() string {
	return "record"
}

// Send implements mipidsi.Channel.
func (r *Record) Send(s mipidsi.Sequence) error {
	r.Lock()
	defer r.Unlock()
	for i, c := range s.Cmds() {
		if r.Err != nil && i == r.FailAt {
			return fmt.Errorf("%w: command %d (%s): %w", mipidsi.ErrTransport, i, c.Type, r.Err)
		}
		r.Cmds = append(r.Cmds, c)
		if r.Channel == nil && r.Delayer != nil && c.Wait > 0 {
			r.Delayer.Sleep(c.Wait)
		}
	}
	if r.Channel != nil {
		return r.Channel.Send(s)
	}
	return nil
}

// Log implements mipidsi.Channel and logs every sequence sent through it.
type Log struct {
	mipidsi.Channel
	// L is the destination. If nil, the standard logger is used.
	L *log.Logger
}

// Send implements mipidsi.Channel.
func (l *Log) Send(s mipidsi.Sequence) error {
	err := l.Channel.Send(s)
	if l.L != nil {
		l.L.Printf("Send(%s) -> %v", s, err)
	} else {
		log.Printf("Send(%s) -> %v", s, err)
	}
	return err
}

var _ mipidsi.Channel = &Record{}
var _ mipidsi.Channel = &Log{}
