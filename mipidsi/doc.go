// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mipidsi sends MIPI DSI command mode packets to a display panel.
//
// A panel is configured with ordered command tables. Each command may
// require the host to wait before the next one is accepted, so a Sequence
// carries the settling delay of every command along with its payload.
//
// Packets are framed as described in the MIPI DSI specification: short
// packets are 4 bytes (data identifier, two data bytes, ECC), long packets
// are a 4 byte header (data identifier, word count, ECC) followed by the
// payload and a 16 bit checksum.
//
// Specification
//
// https://www.mipi.org/specifications/dsi
package mipidsi
