// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sonypanel

import (
	"fmt"
	"sync"

	"github.com/GermanBionicSystems/mipipanel/mipidsi"
	"periph.io/x/conn/v3/gpio"
)

// NumChannels is the number of DSI channels on the display host.
const NumChannels = 3

// Host tracks which channels of a DSI display host have a panel attached.
//
// The zero value is ready to use.
type Host struct {
	mu   sync.Mutex
	used [NumChannels]bool
}

// Attach claims channel and returns the panel attached to it. The channel is
// released by Dev.Halt.
func (h *Host) Attach(channel int, ch mipidsi.Channel, rst gpio.PinOut, opts *Opts) (*Dev, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if channel < 0 || channel >= NumChannels {
		return nil, fmt.Errorf("%w: channel %d out of range", ErrInvalidDevice, channel)
	}
	if h.used[channel] {
		return nil, fmt.Errorf("%w: channel %d in use", ErrInvalidDevice, channel)
	}
	d, err := New(ch, rst, opts)
	if err != nil {
		return nil, err
	}
	h.used[channel] = true
	d.release = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.used[channel] = false
	}
	return d, nil
}

// InUse reports whether channel has a panel attached.
func (h *Host) InUse(channel int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return channel >= 0 && channel < NumChannels && h.used[channel]
}
