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

/*
Package fpga provides the host side of a serial link to an FPGA running an
authenticated-encryption primitive.

Every exchange with the accelerator is a single fixed-size frame in each
direction:

	offset  length  field
	0       1       mode (0x01 encrypt, 0x02 decrypt)
	1       16      key
	17      16      nonce
	33      16      data
	49      15      reserved, zero

There is no delimiter, length prefix or checksum. Key and nonce must be
exactly 16 bytes; data up to 16 bytes is right-padded with zeros.

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-fpga"
	    "github.com/ZaparooProject/go-fpga/transport/uart"
	)

	device, err := fpga.New(uart.Open,
	    fpga.WithPortName("/dev/ttyUSB0"),
	    fpga.WithReadTimeout(2*time.Second),
	)
	if err != nil {
	    log.Fatal(err)
	}

	result, err := device.RunEncrypt([]byte("HELLO"), nil, nil)
	if err != nil {
	    log.Fatal(fpga.UserMessage(err))
	}
	fmt.Println(result.CiphertextHex(), result.KeyHex(), result.NonceHex())

Transactions:

Each call to Transact, RunEncrypt or RunDecrypt is one transaction: the input
is validated, a fresh connection is opened, one frame is written, one frame
is read, and the connection is closed again on every exit path. Nothing is
retried automatically; a retry is a new transaction.

Error Handling:

Every failure is a *TransactionError of exactly one kind:

	switch fpga.GetErrorKind(err) {
	case fpga.KindValidation: // fix the input
	case fpga.KindConnection: // device absent, busy or not permitted
	case fpga.KindProtocol:   // device answered badly or not at all
	}

Decrypted plaintext has trailing zero bytes removed because the frame does not
carry its length. DecryptResult.TrailingZerosStripped reports when that
happened.

Thread Safety:

A Device serializes transactions with a mutex held from open to close, so it
may be shared between goroutines.
*/
package fpga
