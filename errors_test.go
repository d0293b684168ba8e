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
	"strings"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "validation not retryable",
			err:  NewValidationError("encode", ErrInvalidKeyLength),
			want: false,
		},
		{
			name: "connection retryable",
			err:  NewConnectionError("open", "/dev/ttyUSB0", ErrDeviceNotFound),
			want: true,
		},
		{
			name: "protocol retryable",
			err:  NewShortResponseError("read", "/dev/ttyUSB0", 40),
			want: true,
		},
		{
			name: "wrapped protocol retryable",
			err:  fmt.Errorf("encrypt: %w", NewProtocolError("read", "", ErrTransportRead)),
			want: true,
		},
		{
			name: "bare sentinel carries no kind",
			err:  ErrNoResponse,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want ErrorKind
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: 0},
		{name: "validation", err: NewValidationError("encode", ErrDataTooLarge), want: KindValidation},
		{name: "connection", err: NewConnectionError("open", "COM3", ErrDeviceBusy), want: KindConnection},
		{name: "protocol", err: NewProtocolError("decode", "COM3", ErrModeMismatch), want: KindProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GetErrorKind(tt.err); got != tt.want {
				t.Errorf("GetErrorKind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewShortResponseError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sentinel error
		name     string
		received int
	}{
		{name: "zero bytes", received: 0, sentinel: ErrNoResponse},
		{name: "partial frame", received: 40, sentinel: ErrIncompleteResponse},
		{name: "one byte short", received: 63, sentinel: ErrIncompleteResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			te := NewShortResponseError("read", "/dev/ttyUSB0", tt.received)

			if te.Kind != KindProtocol {
				t.Errorf("Kind = %v, want %v", te.Kind, KindProtocol)
			}
			if te.Received != tt.received {
				t.Errorf("Received = %d, want %d", te.Received, tt.received)
			}
			if !errors.Is(te, tt.sentinel) {
				t.Errorf("error %v should wrap %v", te, tt.sentinel)
			}
			if !te.Retryable {
				t.Error("Retryable should be true for short responses")
			}
		})
	}
}

func TestTransactionError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		te   *TransactionError
		want []string
	}{
		{
			name: "with port",
			te:   NewConnectionError("open", "/dev/ttyUSB0", ErrPermissionDenied),
			want: []string{"connection", "open", "/dev/ttyUSB0", "permission denied"},
		},
		{
			name: "without port",
			te:   NewValidationError("encode", ErrInvalidNonceLength),
			want: []string{"validation", "encode", "nonce"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.te.Error()
			for _, substr := range tt.want {
				if !strings.Contains(got, substr) {
					t.Errorf("Error() = %q, should contain %q", got, substr)
				}
			}
		})
	}
}

func TestTransactionError_Unwrap(t *testing.T) {
	t.Parallel()
	te := NewProtocolError("read", "/dev/test", ErrTransportRead)

	if !errors.Is(te.Unwrap(), ErrTransportRead) {
		t.Errorf("Unwrap() = %v, want %v", te.Unwrap(), ErrTransportRead)
	}
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "connection", err: NewConnectionError("open", "COM3", ErrDeviceNotFound), want: "hardware not connected"},
		{name: "protocol", err: NewShortResponseError("read", "COM3", 0), want: "hardware did not respond correctly"},
		{
			name: "validation",
			err:  NewValidationError("encode", ErrDataTooLarge),
			want: "invalid input: data exceeds 16-byte block",
		},
		{name: "unclassified", err: errors.New("boom"), want: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAsTransactionErrorKeepsClassification(t *testing.T) {
	t.Parallel()

	classified := NewValidationError("transact", ErrInvalidFrameLength)
	got := asTransactionError(fmt.Errorf("wrapped: %w", classified), KindProtocol, "transact", "COM3")
	if got != classified {
		t.Errorf("asTransactionError() = %v, want the already classified error", got)
	}

	plain := asTransactionError(errors.New("io failure"), KindConnection, "open", "COM3")
	if plain.Kind != KindConnection || plain.Port != "COM3" {
		t.Errorf("asTransactionError() = %+v, want connection error on COM3", plain)
	}
}
