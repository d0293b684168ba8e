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

package dispatch

import (
	"strings"
)

// Usage lists the commands Handle accepts
const Usage = `commands:
  encrypt <message>                    encrypt up to 16 bytes with a random key and nonce
  decrypt <ciphertext> <nonce> <key>   decrypt a 32 hex character block
  help                                 show this text`

// Handle runs one command line and returns the reply text. Blank lines
// produce an empty reply.
func (d *Dispatcher) Handle(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "encrypt":
		if rest == "" {
			return "usage: encrypt <message>"
		}
		res, err := d.Encrypt(rest, "", "")
		if err != nil {
			return RenderError(err)
		}
		return RenderEncrypt(res)
	case "decrypt":
		args := strings.Fields(rest)
		if len(args) != 3 {
			return "usage: decrypt <ciphertext> <nonce> <key>"
		}
		res, err := d.Decrypt(args[0], args[1], args[2])
		if err != nil {
			return RenderError(err)
		}
		return RenderDecrypt(res)
	case "help":
		return Usage
	default:
		return "unknown command " + cmd + "\n" + Usage
	}
}
