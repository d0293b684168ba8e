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

// Package dispatch is the front end of the accelerator: it decodes the hex
// arguments users type, runs transactions with bounded retries and renders
// results and errors as reply text.
package dispatch

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	fpga "github.com/ZaparooProject/go-fpga"
	"github.com/ZaparooProject/go-fpga/internal/retry"
)

// Cipher runs single encrypt and decrypt transactions. *fpga.Device
// implements it.
type Cipher interface {
	RunEncrypt(plaintext, key, nonce []byte) (*fpga.EncryptResult, error)
	RunDecrypt(ciphertext, key, nonce []byte) (*fpga.DecryptResult, error)
}

// Dispatcher turns user requests into transactions
type Dispatcher struct {
	cipher Cipher
	retry  retry.Config
}

// New creates a dispatcher. Each retry attempt is a new transaction.
func New(cipher Cipher, retryConfig retry.Config) *Dispatcher {
	if retryConfig.OnRetry == nil {
		retryConfig.OnRetry = logRetry
	}
	return &Dispatcher{cipher: cipher, retry: retryConfig}
}

func logRetry(attempt int, err error) {
	l := fpga.Logger()
	l.Warn().
		Int("attempt", attempt).
		Str("kind", fpga.GetErrorKind(err).String()).
		Err(err).
		Msg("retrying transaction")
}

// Encrypt encrypts message. keyHex and nonceHex may be empty, in which case
// fresh random values are used and returned in the result.
func (d *Dispatcher) Encrypt(message, keyHex, nonceHex string) (*fpga.EncryptResult, error) {
	key, err := decodeHex("key", keyHex)
	if err != nil {
		return nil, err
	}
	nonce, err := decodeHex("nonce", nonceHex)
	if err != nil {
		return nil, err
	}
	plaintext := []byte(message)
	if len(plaintext) > fpga.BlockSize {
		return nil, fpga.NewValidationError("encrypt",
			fmt.Errorf("%w: message is %d bytes, limit is %d", fpga.ErrDataTooLarge, len(plaintext), fpga.BlockSize))
	}

	return retry.Do(d.retry, func() (*fpga.EncryptResult, error) {
		return d.cipher.RunEncrypt(plaintext, key, nonce)
	})
}

// Decrypt decrypts a hex ciphertext block
func (d *Dispatcher) Decrypt(ciphertextHex, nonceHex, keyHex string) (*fpga.DecryptResult, error) {
	ciphertext, err := decodeHex("ciphertext", ciphertextHex)
	if err != nil {
		return nil, err
	}
	nonce, err := decodeHex("nonce", nonceHex)
	if err != nil {
		return nil, err
	}
	key, err := decodeHex("key", keyHex)
	if err != nil {
		return nil, err
	}

	return retry.Do(d.retry, func() (*fpga.DecryptResult, error) {
		return d.cipher.RunDecrypt(ciphertext, key, nonce)
	})
}

func decodeHex(field, s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fpga.NewValidationError("decode",
			fmt.Errorf("%w: %s: %w", fpga.ErrInvalidHex, field, err))
	}
	return b, nil
}

// RenderEncrypt formats an encrypt result for the user
func RenderEncrypt(r *fpga.EncryptResult) string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "ciphertext: %s\n", r.CiphertextHex())
	_, _ = fmt.Fprintf(&b, "nonce: %s\n", r.NonceHex())
	_, _ = fmt.Fprintf(&b, "key: %s", r.KeyHex())
	return b.String()
}

// RenderDecrypt formats a decrypt result for the user. Non-printable
// plaintext is shown as hex.
func RenderDecrypt(r *fpga.DecryptResult) string {
	var s string
	if printable(r.Plaintext) {
		s = "plaintext: " + r.Text()
	} else {
		s = "plaintext (hex): " + hex.EncodeToString(r.Plaintext)
	}
	if r.TrailingZerosStripped {
		s += "\nnote: trailing zero bytes were removed"
	}
	return s
}

// RenderError formats err for the user. Details stay in the logs.
func RenderError(err error) string {
	return "error: " + fpga.UserMessage(err)
}

func printable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
