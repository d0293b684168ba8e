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
	"io"
	"time"
)

// ErrInvalidConfig is returned by options given unusable values
var ErrInvalidConfig = errors.New("invalid device configuration")

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithPortConfig replaces the whole port configuration
func WithPortConfig(cfg PortConfig) Option {
	return func(d *Device) error {
		if cfg.Name == "" {
			return fmt.Errorf("%w: empty port name", ErrInvalidConfig)
		}
		if cfg.ReadTimeout <= 0 {
			return fmt.Errorf("%w: read timeout must be positive", ErrInvalidConfig)
		}
		d.config.Port = cfg
		return nil
	}
}

// WithPortName sets the device path
func WithPortName(name string) Option {
	return func(d *Device) error {
		if name == "" {
			return fmt.Errorf("%w: empty port name", ErrInvalidConfig)
		}
		d.config.Port.Name = name
		return nil
	}
}

// WithBaudRate sets the UART baud rate
func WithBaudRate(baud int) Option {
	return func(d *Device) error {
		if baud <= 0 {
			return fmt.Errorf("%w: baud rate %d", ErrInvalidConfig, baud)
		}
		d.config.Port.BaudRate = baud
		return nil
	}
}

// WithReadTimeout sets how long a transaction waits for the response frame
func WithReadTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: read timeout must be positive", ErrInvalidConfig)
		}
		d.config.Port.ReadTimeout = timeout
		return nil
	}
}

// WithMetrics records every transaction in m
func WithMetrics(m *Metrics) Option {
	return func(d *Device) error {
		d.config.Metrics = m
		return nil
	}
}

// WithRandReader sets the source used to generate keys and nonces
func WithRandReader(r io.Reader) Option {
	return func(d *Device) error {
		if r == nil {
			return fmt.Errorf("%w: nil random source", ErrInvalidConfig)
		}
		d.config.Rand = r
		return nil
	}
}
