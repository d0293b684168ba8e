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

// Package uart provides the UART transport for the FPGA link
package uart

import (
	"errors"
	"fmt"
	"io/fs"

	fpga "github.com/ZaparooProject/go-fpga"
	"go.bug.st/serial"
)

// Open opens the serial port described by cfg for one transaction. It
// satisfies fpga.TransportFactory.
func Open(cfg fpga.PortConfig) (fpga.Transport, error) {
	return openWith(serial.Open, cfg)
}

type openFunc func(name string, mode *serial.Mode) (serial.Port, error)

func openWith(open openFunc, cfg fpga.PortConfig) (fpga.Transport, error) {
	if cfg.Name == "" {
		return nil, fpga.NewConnectionError("open", cfg.Name, fpga.ErrDeviceNotFound)
	}
	baud := cfg.BaudRate
	if baud <= 0 {
		baud = fpga.DefaultBaudRate
	}

	port, err := open(cfg.Name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fpga.NewConnectionError("open", cfg.Name, classifyOpenError(err))
	}

	// Drop anything left over from an aborted exchange
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, fpga.NewConnectionError("open", cfg.Name, fmt.Errorf("%w: reset input: %w", fpga.ErrPortOpen, err))
	}

	return fpga.NewPortTransport(port, cfg.Name, fpga.TransportUART, cfg.ReadTimeout), nil
}

// classifyOpenError maps serial open failures onto the connection sentinels
func classifyOpenError(err error) error {
	var portErr *serial.PortError
	if !errors.As(err, &portErr) {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("%w: %w", fpga.ErrDeviceNotFound, err)
		case errors.Is(err, fs.ErrPermission):
			return fmt.Errorf("%w: %w", fpga.ErrPermissionDenied, err)
		default:
			return fmt.Errorf("%w: %w", fpga.ErrPortOpen, err)
		}
	}
	switch portErr.Code() {
	case serial.PortNotFound, serial.InvalidSerialPort:
		return fmt.Errorf("%w: %w", fpga.ErrDeviceNotFound, err)
	case serial.PermissionDenied:
		return fmt.Errorf("%w: %w", fpga.ErrPermissionDenied, err)
	case serial.PortBusy:
		return fmt.Errorf("%w: %w", fpga.ErrDeviceBusy, err)
	default:
		return fmt.Errorf("%w: %w", fpga.ErrPortOpen, err)
	}
}
