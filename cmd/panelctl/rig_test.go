// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/mipipanel/sonypanel"
)

func TestSimRig_cycle(t *testing.T) {
	if testing.Short() {
		t.Skip("the panel timings take about half a second")
	}
	defer func(s bool, c string, ch int) { simulate, capture, channel = s, c, ch }(simulate, capture, channel)
	simulate = true
	capture = filepath.Join(t.TempDir(), "cycle.dat")
	channel = 1

	err := withRig(func(r *rig) error {
		if !r.host.InUse(1) {
			t.Error("channel 1 is not claimed")
		}
		if err := powerOff(r); err != nil {
			return err
		}
		if s := r.panel.State(); s != sonypanel.Off {
			t.Errorf("State() = %s after off", s)
		}
		if err := powerOn(r); err != nil {
			return err
		}
		if s := r.panel.State(); s != sonypanel.On {
			t.Errorf("State() = %s after on", s)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(capture)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var out bytes.Buffer
	if err := dumpPackets(&out, f); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if n := strings.Count(got, "\n"); n != 5 {
		t.Errorf("captured %d packets, want 5:\n%s", n, got)
	}
	if !strings.Contains(got, "  0 vc1 DCSShortWrite 28 00") || !strings.Contains(got, "  4 vc1 DCSShortWrite 29 00") {
		t.Errorf("unexpected capture:\n%s", got)
	}
}

func TestOpenRig_badChannel(t *testing.T) {
	defer func(s bool, ch int) { simulate, channel = s, ch }(simulate, channel)
	simulate = true
	channel = 4
	if _, err := openRig(); err == nil {
		t.Fatal("openRig() succeeded")
	}
}
