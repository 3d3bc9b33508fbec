// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/host/v3/cpu"
)

// Delayer blocks the calling goroutine for a fixed duration.
type Delayer interface {
	// Sleep blocks for at least d. It may yield the processor, so it must not
	// be called inside a CriticalSection.
	Sleep(d time.Duration)
	// Spin busy-waits for at least d without yielding. It is meant for
	// microsecond holds, including inside a CriticalSection.
	Spin(d time.Duration)
}

// HostDelay implements Delayer on the host CPU.
//
// It is safe for concurrent use and one value can be shared by several
// devices.
type HostDelay struct {
	Clock clockwork.Clock // If nil, real clock will be used.
}

// Sleep implements Delayer.
func (h *HostDelay) Sleep(d time.Duration) {
	c := h.Clock
	if c == nil {
		c = clockwork.NewRealClock()
	}
	c.Sleep(d)
}

// Spin implements Delayer.
func (h *HostDelay) Spin(d time.Duration) {
	cpu.Nanospin(d)
}

var _ Delayer = &HostDelay{}
