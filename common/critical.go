// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import "runtime"

// CriticalSection brackets a timing sensitive code region.
//
// Enter suspends preemption of the calling execution context and returns the
// function that restores the state that was in effect before the call. Calls
// nest: each leave restores exactly what its Enter saved.
type CriticalSection interface {
	Enter() (leave func())
}

// OSThread implements CriticalSection by wiring the calling goroutine to its
// OS thread for the duration of the region.
//
// User space cannot mask interrupts, so this only keeps the Go scheduler from
// migrating the goroutine mid-pulse. runtime.LockOSThread calls are counted,
// which makes nesting safe.
type OSThread struct{}

// Enter implements CriticalSection.
func (OSThread) Enter() func() {
	runtime.LockOSThread()
	return runtime.UnlockOSThread
}

var _ CriticalSection = OSThread{}
