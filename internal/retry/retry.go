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

// Package retry runs caller-side retries of whole FPGA transactions.
// Every attempt is a brand-new transaction with its own connection.
package retry

import (
	"time"

	fpga "github.com/ZaparooProject/go-fpga"
)

// Operation is one complete transaction attempt
type Operation[T any] func() (T, error)

// Config configures retry behavior
type Config struct {
	// OnRetry is called before each new attempt with the error that caused it
	OnRetry func(attempt int, err error)
	// MaxAttempts is the total number of attempts; values below 1 mean 1
	MaxAttempts int
	// ProtocolDelay is the pause after a protocol error
	ProtocolDelay time.Duration
	// ConnectionDelay is the pause after a connection error. Zero disables
	// retrying connection errors so an absent device is not hammered.
	ConnectionDelay time.Duration
}

// Default returns a config that performs a single attempt
func Default() Config {
	return Config{
		MaxAttempts:   1,
		ProtocolDelay: 100 * time.Millisecond,
	}
}

// sleep is replaced in tests
var sleep = time.Sleep

// Do executes operation until it succeeds, fails with an error that should
// not be retried, or the attempts run out. The last error is returned as is
// so its kind is preserved.
func Do[T any](config Config, operation Operation[T]) (T, error) {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := operation()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		delay, ok := delayFor(config, err)
		if !ok {
			break
		}
		if config.OnRetry != nil {
			config.OnRetry(attempt, err)
		}
		if delay > 0 {
			sleep(delay)
		}
	}
	return zero, lastErr
}

// delayFor returns the pause before retrying after err, and whether a retry
// is allowed at all
func delayFor(config Config, err error) (time.Duration, bool) {
	if !fpga.IsRetryable(err) {
		return 0, false
	}
	switch fpga.GetErrorKind(err) {
	case fpga.KindProtocol:
		return config.ProtocolDelay, true
	case fpga.KindConnection:
		if config.ConnectionDelay <= 0 {
			return 0, false
		}
		return config.ConnectionDelay, true
	default:
		return 0, false
	}
}
