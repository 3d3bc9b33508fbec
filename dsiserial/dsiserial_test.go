// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dsiserial

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/GermanBionicSystems/mipipanel/mipidsi"
	"github.com/google/go-cmp/cmp"
	"go.bug.st/serial"
)

// fakePort implements the parts of serial.Port used by Port. Writes are
// split in chunks of at most chunk bytes to exercise short writes.
type fakePort struct {
	serial.Port
	chunk   int
	written bytes.Buffer
	answer  []byte
	drained int
	closed  bool
}

func (f *fakePort) Write(p []byte) (int, error) {
	n := len(p)
	if f.chunk != 0 && n > f.chunk {
		n = f.chunk
	}
	return f.written.Write(p[:n])
}

func (f *fakePort) Read(p []byte) (int, error) {
	n := copy(p, f.answer)
	f.answer = f.answer[n:]
	return n, nil
}

func (f *fakePort) Drain() error {
	f.drained++
	return nil
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

type noDelay struct{}

func (noDelay) Sleep(time.Duration) {}
func (noDelay) Spin(time.Duration)  {}

func TestPort_Tx(t *testing.T) {
	f := &fakePort{chunk: 3, answer: []byte{0xAA, 0xBB}}
	p := New(f, "fake")
	r := make([]byte, 2)
	if err := p.Tx([]byte{1, 2, 3, 4, 5, 6, 7}, r); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(f.written.Bytes(), []byte{1, 2, 3, 4, 5, 6, 7}); diff != "" {
		t.Errorf("written difference (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(r, []byte{0xAA, 0xBB}); diff != "" {
		t.Errorf("read difference (-got +want):\n%s", diff)
	}
	if f.drained != 1 {
		t.Errorf("Drain() called %d times, want 1", f.drained)
	}
}

func TestPort_timeout(t *testing.T) {
	p := New(&fakePort{}, "fake")
	if err := p.Tx(nil, make([]byte, 1)); !errors.Is(err, ErrTimeout) {
		t.Errorf("Tx() = %v, want ErrTimeout", err)
	}
}

func TestPort_Close(t *testing.T) {
	f := &fakePort{}
	p := New(f, "fake")
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !f.closed {
		t.Error("serial port not closed")
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if err := p.Tx([]byte{1}, nil); err == nil {
		t.Error("Tx() after Close() succeeded")
	}
	if got := p.String(); got != "dsiserial(fake)" {
		t.Errorf("String() = %q", got)
	}
}

func TestPort_mipidsi(t *testing.T) {
	f := &fakePort{answer: []byte{mipidsi.Ack}}
	ch, err := mipidsi.New(New(f, "fake"), &mipidsi.Opts{Delayer: noDelay{}})
	if err != nil {
		t.Fatal(err)
	}
	s := mipidsi.MustSequence(
		mipidsi.Cmd{Type: mipidsi.DCSShortWrite, Payload: []byte{0x11, 0x00}},
		mipidsi.Cmd{Type: mipidsi.DCSShortWrite, Ack: true, Payload: []byte{0x29, 0x00}},
	)
	if err := ch.Send(s); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x05, 0x11, 0x00, 0x36, 0x05, 0x29, 0x00, 0x1C}
	if diff := cmp.Diff(f.written.Bytes(), want); diff != "" {
		t.Errorf("written difference (-got +want):\n%s", diff)
	}
}
