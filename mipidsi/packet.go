// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mipidsi

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/GermanBionicSystems/mipipanel/common"
)

const (
	headerSize = 4
	crcSize    = 2
	// MaxVirtualChannel is the highest virtual channel a data identifier can
	// address.
	MaxVirtualChannel = 3
)

var (
	// ErrECC is returned when a packet header fails its error correction
	// code.
	ErrECC = errors.New("mipidsi: header ECC mismatch")
	// ErrCRC is returned when a long packet payload fails its checksum.
	ErrCRC = errors.New("mipidsi: payload CRC mismatch")
)

// Packet is a command addressed to a virtual channel.
type Packet struct {
	VC  byte
	Cmd Cmd
}

// AppendPacket appends the wire encoding of c addressed to virtual channel
// vc to dst.
func AppendPacket(dst []byte, vc byte, c Cmd) ([]byte, error) {
	if vc > MaxVirtualChannel {
		return dst, fmt.Errorf("mipidsi: virtual channel %d out of range", vc)
	}
	if err := c.validate(); err != nil {
		return dst, err
	}
	var h [3]byte
	h[0] = vc<<6 | byte(c.Type)&0x3F
	if c.Type.Long() {
		binary.LittleEndian.PutUint16(h[1:], uint16(len(c.Payload)))
	} else {
		copy(h[1:], c.Payload)
	}
	dst = append(dst, h[0], h[1], h[2], common.ECC(h))
	if c.Type.Long() {
		dst = append(dst, c.Payload...)
		dst = binary.LittleEndian.AppendUint16(dst, common.CRC16(c.Payload))
	}
	return dst, nil
}

// Encode returns the wire encoding of c addressed to virtual channel vc.
func Encode(vc byte, c Cmd) ([]byte, error) {
	return AppendPacket(nil, vc, c)
}

// Decoder reads packets from a byte stream, like a capture of the link.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode returns the next packet. It returns io.EOF at the end of a clean
// stream and io.ErrUnexpectedEOF when the stream ends inside a packet.
//
// Short write payloads are always returned with both data bytes.
func (d *Decoder) Decode() (Packet, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
		return Packet{}, err
	}
	h := [3]byte{hdr[0], hdr[1], hdr[2]}
	if ecc := common.ECC(h); ecc != hdr[3] {
		return Packet{}, fmt.Errorf("%w: got 0x%02X, want 0x%02X", ErrECC, hdr[3], ecc)
	}
	p := Packet{VC: hdr[0] >> 6, Cmd: Cmd{Type: DataType(hdr[0] & 0x3F)}}
	if !p.Cmd.Type.Long() {
		p.Cmd.Payload = []byte{hdr[1], hdr[2]}
		return p, nil
	}
	n := int(binary.LittleEndian.Uint16(hdr[1:3]))
	buf := make([]byte, n+crcSize)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Packet{}, err
	}
	p.Cmd.Payload = buf[:n]
	if crc := common.CRC16(p.Cmd.Payload); crc != binary.LittleEndian.Uint16(buf[n:]) {
		return Packet{}, fmt.Errorf("%w: got 0x%04X, want 0x%04X", ErrCRC, binary.LittleEndian.Uint16(buf[n:]), crc)
	}
	return p, nil
}
