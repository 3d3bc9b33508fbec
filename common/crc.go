// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions and hardware capabilities used across
// multiple packages. For example, the MIPI DSI packet checksums and the
// delay primitives.
package common

import "math/bits"

// eccMasks selects the header bits covered by each of the six ECC parity
// bits. Parity bits 6 and 7 are always zero.
var eccMasks = [6]uint32{0xF12CB7, 0xF2555B, 0x749A6D, 0xB8E38E, 0xDF03F0, 0xEFFC00}

// ECC calculates the MIPI DSI error correction code of a 3 byte packet
// header. The first byte is the data identifier, least significant bit first.
func ECC(header [3]byte) byte {
	d := uint32(header[0]) | uint32(header[1])<<8 | uint32(header[2])<<16
	var ecc byte
	for i, m := range eccMasks {
		ecc |= byte(bits.OnesCount32(d&m)&1) << i
	}
	return ecc
}

// CRC16 calculates the checksum that trails a MIPI DSI long packet payload.
// This is CRC-16/CCITT processed least significant bit first, seeded with
// 0xFFFF.
func CRC16(bytes []byte) uint16 {
	var crc uint16 = 0xffff
	for _, val := range bytes {
		crc ^= uint16(val)
		for range 8 {
			if (crc & 1) == 0 {
				crc >>= 1
			} else {
				crc = (crc >> 1) ^ 0x8408
			}
		}
	}
	return crc
}
