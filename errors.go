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
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrInvalidMode        = errors.New("invalid mode")
	ErrInvalidKeyLength   = errors.New("key must be exactly 16 bytes")
	ErrInvalidNonceLength = errors.New("nonce must be exactly 16 bytes")
	ErrDataTooLarge       = errors.New("data exceeds 16-byte block")
	ErrInvalidFrameLength = errors.New("frame must be exactly 64 bytes")
	ErrInvalidHex         = errors.New("invalid hex encoding")
)

// Connection errors
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied opening serial device")
	ErrDeviceBusy       = errors.New("serial device busy")
	ErrPortOpen         = errors.New("failed to open serial device")
)

// Protocol errors
var (
	ErrNoResponse         = errors.New("no response from FPGA")
	ErrIncompleteResponse = errors.New("incomplete response from FPGA")
	ErrModeMismatch       = errors.New("response mode does not match request")
	ErrTransportWrite     = errors.New("transport write failed")
	ErrTransportRead      = errors.New("transport read failed")
	ErrTransportFault     = errors.New("transport fault during exchange")
)

// ErrorKind classifies every transaction failure
type ErrorKind int

const (
	// KindValidation means the input was rejected before any hardware interaction.
	KindValidation ErrorKind = iota + 1
	// KindConnection means the serial device could not be opened.
	KindConnection
	// KindProtocol means the device was reachable but the exchange was
	// incomplete or malformed.
	KindProtocol
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConnection:
		return "connection"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// TransactionError is the single error type returned by a failed transaction.
type TransactionError struct {
	Err       error
	Op        string
	Port      string
	Kind      ErrorKind
	Received  int // bytes read before a protocol failure
	Retryable bool
}

// Error implements the error interface
func (e *TransactionError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s error: %s on %s: %v", e.Kind, e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error. Validation errors are never retryable.
func NewValidationError(op string, err error) *TransactionError {
	return &TransactionError{
		Op:        op,
		Err:       err,
		Kind:      KindValidation,
		Retryable: false,
	}
}

// NewConnectionError creates a connection error for the given port
func NewConnectionError(op, port string, err error) *TransactionError {
	return &TransactionError{
		Op:        op,
		Port:      port,
		Err:       err,
		Kind:      KindConnection,
		Retryable: true,
	}
}

// NewProtocolError creates a protocol error for the given port
func NewProtocolError(op, port string, err error) *TransactionError {
	return &TransactionError{
		Op:        op,
		Port:      port,
		Err:       err,
		Kind:      KindProtocol,
		Retryable: true,
	}
}

// NewShortResponseError creates a protocol error for a response that stopped
// after received bytes. Zero bytes and a partial frame differ only in
// the wrapped sentinel and the byte count.
func NewShortResponseError(op, port string, received int) *TransactionError {
	sentinel := ErrIncompleteResponse
	if received == 0 {
		sentinel = ErrNoResponse
	}
	te := NewProtocolError(op, port, fmt.Errorf("%w: got %d of %d bytes", sentinel, received, FrameSize))
	te.Received = received
	return te
}

// GetErrorKind returns the kind of a transaction error, or 0 if err carries none
func GetErrorKind(err error) ErrorKind {
	var te *TransactionError
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

// IsRetryable reports whether a caller may issue a fresh transaction after err
func IsRetryable(err error) bool {
	var te *TransactionError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return false
}

// IsValidationError reports whether err is a validation failure
func IsValidationError(err error) bool {
	return GetErrorKind(err) == KindValidation
}

// IsConnectionError reports whether err is a connection failure
func IsConnectionError(err error) bool {
	return GetErrorKind(err) == KindConnection
}

// IsProtocolError reports whether err is a protocol failure
func IsProtocolError(err error) bool {
	return GetErrorKind(err) == KindProtocol
}

// UserMessage renders err as the short message shown to an end user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var te *TransactionError
	if !errors.As(err, &te) {
		return "internal error"
	}
	switch te.Kind {
	case KindValidation:
		return "invalid input: " + te.Err.Error()
	case KindConnection:
		return "hardware not connected"
	case KindProtocol:
		return "hardware did not respond correctly"
	default:
		return "internal error"
	}
}

// asTransactionError keeps an already classified error and otherwise wraps
// err with the fallback kind.
func asTransactionError(err error, kind ErrorKind, op, port string) *TransactionError {
	var te *TransactionError
	if errors.As(err, &te) {
		return te
	}
	switch kind {
	case KindValidation:
		return NewValidationError(op, err)
	case KindConnection:
		return NewConnectionError(op, port, err)
	default:
		return NewProtocolError(op, port, err)
	}
}
