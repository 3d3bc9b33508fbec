// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package blsim

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/GermanBionicSystems/mipipanel/pulsebl"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
)

// clockDelay advances a fake clock instead of waiting.
type clockDelay struct {
	clock clockwork.FakeClock
}

func (c *clockDelay) Sleep(d time.Duration) { c.clock.Advance(d) }
func (c *clockDelay) Spin(d time.Duration)  { c.clock.Advance(d) }

type noCS struct{}

func (noCS) Enter() func() { return func() {} }

func newPair(t *testing.T, w *bytes.Buffer) (*Dev, *pulsebl.Dev, clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	sim := New(&Opts{W: w, Clock: clock})
	bl, err := pulsebl.New(sim, &pulsebl.Opts{CriticalSection: noCS{}, Delayer: &clockDelay{clock: clock}})
	if err != nil {
		t.Fatal(err)
	}
	return sim, bl, clock
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	sim, bl, clock := newPair(t, &buf)
	for level := 0; level <= pulsebl.DefaultMaxLevel; level++ {
		if err := bl.SetLevel(level); err != nil {
			t.Fatal(err)
		}
		if got := sim.Level(); got != level {
			t.Errorf("after SetLevel(%d) the controller decoded %d", level, got)
		}
		// Let the controller latch before the next train.
		clock.Advance(time.Millisecond)
	}
}

func TestDecode_descending(t *testing.T) {
	var buf bytes.Buffer
	sim, bl, clock := newPair(t, &buf)
	for _, level := range []int{32, 7, 0, 1, 18} {
		if err := bl.SetLevel(level); err != nil {
			t.Fatal(err)
		}
		if got := sim.Level(); got != level {
			t.Errorf("after SetLevel(%d) the controller decoded %d", level, got)
		}
		clock.Advance(time.Millisecond)
	}
}

func TestDecode_noLatch(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sim := New(&Opts{W: &bytes.Buffer{}, Clock: clock})
	// Two trains of one pulse each, too close to each other: the controller
	// sees a single train of two pulses.
	for range 2 {
		_ = sim.Out(gpio.Low)
		clock.Advance(3 * time.Microsecond)
		_ = sim.Out(gpio.High)
		clock.Advance(10 * time.Microsecond)
	}
	if got := sim.Level(); got != 31 {
		t.Errorf("Level() = %d, want 31", got)
	}
}

func TestRefresh(t *testing.T) {
	for _, tc := range []struct {
		level int
		lit   int
	}{
		{level: 0, lit: 0},
		{level: 16, lit: 4},
		{level: 32, lit: 8},
	} {
		t.Run(fmt.Sprint(tc.level), func(t *testing.T) {
			var buf bytes.Buffer
			clock := clockwork.NewFakeClock()
			sim := New(&Opts{W: &buf, Clock: clock, X: 8})
			bl, err := pulsebl.New(sim, &pulsebl.Opts{CriticalSection: noCS{}, Delayer: &clockDelay{clock: clock}})
			if err != nil {
				t.Fatal(err)
			}
			if err := bl.SetLevel(tc.level); err != nil {
				t.Fatal(err)
			}
			if err := sim.Refresh(); err != nil {
				t.Fatal(err)
			}
			got := buf.String()
			if !strings.HasPrefix(got, "\r\033[0m") {
				t.Errorf("Refresh() = %q, missing reset prefix", got)
			}
			if want := fmt.Sprintf(" %2d/32 ", tc.level); !strings.HasSuffix(got, want) {
				t.Errorf("Refresh() = %q, want suffix %q", got, want)
			}
			v := byte(255 * tc.level / 32)
			on := sim.palette.Block(colorNRGBA(v))
			off := sim.palette.Block(colorNRGBA(0))
			want := strings.Repeat(on, tc.lit) + strings.Repeat(off, 8-tc.lit)
			if tc.lit == 0 {
				want = strings.Repeat(off, 8)
			}
			if !strings.Contains(got, want) {
				t.Errorf("Refresh() = %q, want bar %q", got, want)
			}
		})
	}
}

func TestPin(t *testing.T) {
	var buf bytes.Buffer
	sim := New(&Opts{W: &buf})
	if sim.String() != "BacklightSim" || sim.Name() != "BL_EN" || sim.Number() != -1 || sim.Function() != "Out" {
		t.Errorf("unexpected pin identity %s/%s/%d/%s", sim, sim.Name(), sim.Number(), sim.Function())
	}
	if err := sim.PWM(gpio.DutyHalf, 0); err == nil {
		t.Error("PWM() succeeded")
	}
	if err := sim.Halt(); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "\n\033[0m" {
		t.Errorf("Halt() wrote %q", got)
	}
}

func colorNRGBA(v byte) color.NRGBA {
	return color.NRGBA{v, v, v, 255}
}
