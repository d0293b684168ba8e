// go-fpga
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-fpga.
//
// go-fpga is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-fpga is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-fpga; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package fpga

import (
	"bytes"
	"fmt"

	"github.com/ZaparooProject/go-fpga/internal/frame"
)

// Frame and field sizes
const (
	FrameSize = frame.Size
	BlockSize = frame.FieldSize
	KeySize   = frame.FieldSize
	NonceSize = frame.FieldSize
)

// Mode selects the operation the accelerator performs on a frame
type Mode byte

const (
	// ModeEncrypt encrypts the data block.
	ModeEncrypt Mode = frame.ModeEncrypt
	// ModeDecrypt decrypts the data block.
	ModeDecrypt Mode = frame.ModeDecrypt
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeEncrypt:
		return "encrypt"
	case ModeDecrypt:
		return "decrypt"
	default:
		return fmt.Sprintf("mode(0x%02X)", byte(m))
	}
}

// Valid reports whether m is one of the two defined modes
func (m Mode) Valid() bool {
	return m == ModeEncrypt || m == ModeDecrypt
}

// Frame is the decoded view of a 64-byte frame
type Frame struct {
	Key   [KeySize]byte
	Nonce [NonceSize]byte
	Data  [BlockSize]byte
	Mode  Mode
}

// Bytes returns the wire encoding of f. Reserved bytes are always zero.
func (f *Frame) Bytes() []byte {
	buf := make([]byte, FrameSize)
	buf[frame.ModeOffset] = byte(f.Mode)
	copy(buf[frame.KeyOffset:], f.Key[:])
	copy(buf[frame.NonceOffset:], f.Nonce[:])
	copy(buf[frame.DataOffset:], f.Data[:])
	return buf
}

// validateFields checks lengths and mode before a frame is built.
// Key and nonce are never padded; only data is.
func validateFields(mode Mode, key, nonce, data []byte) error {
	if !mode.Valid() {
		return NewValidationError("encode", fmt.Errorf("%w: 0x%02X", ErrInvalidMode, byte(mode)))
	}
	if len(key) != KeySize {
		return NewValidationError("encode", fmt.Errorf("%w: got %d", ErrInvalidKeyLength, len(key)))
	}
	if len(nonce) != NonceSize {
		return NewValidationError("encode", fmt.Errorf("%w: got %d", ErrInvalidNonceLength, len(nonce)))
	}
	if len(data) > BlockSize {
		return NewValidationError("encode", fmt.Errorf("%w: got %d", ErrDataTooLarge, len(data)))
	}
	return nil
}

// NewFrame validates the fields and builds a request frame, right-padding
// data with zero bytes.
func NewFrame(mode Mode, key, nonce, data []byte) (*Frame, error) {
	if err := validateFields(mode, key, nonce, data); err != nil {
		return nil, err
	}
	f := &Frame{Mode: mode}
	copy(f.Key[:], key)
	copy(f.Nonce[:], nonce)
	copy(f.Data[:], data)
	return f, nil
}

// EncodeFrame builds the 64-byte wire frame for a request
func EncodeFrame(mode Mode, key, nonce, data []byte) ([]byte, error) {
	f, err := NewFrame(mode, key, nonce, data)
	if err != nil {
		return nil, err
	}
	return f.Bytes(), nil
}

// DecodeFrame parses a 64-byte response. The reserved bytes are ignored and
// the mode byte is returned as received, so the caller can compare it with
// the request.
func DecodeFrame(b []byte) (*Frame, error) {
	if len(b) != FrameSize {
		return nil, NewProtocolError("decode", "", fmt.Errorf("%w: got %d", ErrInvalidFrameLength, len(b)))
	}
	f := &Frame{Mode: Mode(b[frame.ModeOffset])}
	copy(f.Key[:], b[frame.KeyOffset:frame.NonceOffset])
	copy(f.Nonce[:], b[frame.NonceOffset:frame.DataOffset])
	copy(f.Data[:], b[frame.DataOffset:frame.ReservedOffset])
	return f, nil
}

// StripTrailingZeros removes zero padding from a decrypted block. The frame
// carries no plaintext length, so a plaintext that really ends in 0x00 loses
// those bytes; stripped reports whether anything was removed.
func StripTrailingZeros(data []byte) (plain []byte, stripped bool) {
	trimmed := bytes.TrimRight(data, "\x00")
	out := make([]byte, len(trimmed))
	copy(out, trimmed)
	return out, len(trimmed) != len(data)
}
