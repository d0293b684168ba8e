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

// Package testing provides raw frame builders and vectors for tests
package testing

import (
	"bytes"

	"github.com/ZaparooProject/go-fpga/internal/frame"
)

// Test vectors
var (
	// TestKey is 00 01 02 ... 0f
	TestKey = sequence(0x00)

	// TestNonce is 10 11 12 ... 1f
	TestNonce = sequence(0x10)

	// TestCiphertext is a fixed ciphertext block of 0xAA bytes
	TestCiphertext = bytes.Repeat([]byte{0xAA}, frame.FieldSize)
)

// BuildResponse creates a raw response frame
func BuildResponse(mode byte, key, nonce, data []byte) []byte {
	response := make([]byte, frame.Size)
	response[frame.ModeOffset] = mode
	copy(response[frame.KeyOffset:frame.NonceOffset], key)
	copy(response[frame.NonceOffset:frame.DataOffset], nonce)
	copy(response[frame.DataOffset:frame.ReservedOffset], data)
	return response
}

// EchoWithData answers request the way the accelerator does: mode, key and
// nonce are echoed and the data field carries the result.
func EchoWithData(request, data []byte) []byte {
	response := make([]byte, frame.Size)
	copy(response, request)
	block := response[frame.DataOffset:frame.ReservedOffset]
	for i := range block {
		block[i] = 0
	}
	copy(block, data)
	return response
}

// BuildPartialResponse returns the first n bytes of a full response
func BuildPartialResponse(full []byte, n int) []byte {
	if n > len(full) {
		n = len(full)
	}
	return append([]byte(nil), full[:n]...)
}

// PadBlock right-pads data with zeros to one block
func PadBlock(data []byte) []byte {
	block := make([]byte, frame.FieldSize)
	copy(block, data)
	return block
}

func sequence(start byte) []byte {
	out := make([]byte, frame.FieldSize)
	for i := range out {
		out[i] = start + byte(i)
	}
	return out
}
