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

// Package frame provides the fixed frame layout shared by the codec and the transports
package frame

// Frame size limits
const (
	Size      = 64 // Every frame is exactly this long in both directions
	FieldSize = 16 // Key, nonce and data fields
)

// Field offsets within a frame
const (
	ModeOffset     = 0
	KeyOffset      = 1                       // 16 bytes of key material
	NonceOffset    = KeyOffset + FieldSize   // 17
	DataOffset     = NonceOffset + FieldSize // 33
	ReservedOffset = DataOffset + FieldSize  // 49, zero padding up to Size
)

// ReservedSize is the number of trailing padding bytes.
const ReservedSize = Size - ReservedOffset

// Mode bytes understood by the accelerator
const (
	ModeEncrypt = 0x01
	ModeDecrypt = 0x02
)
