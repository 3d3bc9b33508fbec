// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sonypanel

import (
	"github.com/GermanBionicSystems/mipipanel/common"
	"periph.io/x/conn/v3/gpio"
)

// errorHandler is a wrapper for error management.
type errorHandler struct {
	d   *Dev
	err error
}

func (eh *errorHandler) rstConfigure(m common.PinMode) {
	if eh.err != nil {
		return
	}
	eh.err = common.Configure(eh.d.rst, m, eh.d.drive)
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.rst.Out(l)
}
