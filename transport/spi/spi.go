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

// Package spi provides an SPI transport for accelerators wired to an SPI bus
// instead of a UART.
//
// SPI is clocked by the host, so "no bytes yet" cannot be observed directly.
// After the request is shifted out the transport keeps clocking in 64-byte
// frames until the first byte is a valid mode echo or the read timeout
// expires.
package spi

import (
	"fmt"
	"io"
	"time"

	fpga "github.com/ZaparooProject/go-fpga"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// pollInterval is the pause between readiness polls
	pollInterval = 2 * time.Millisecond

	// Max clock frequency accepted from configuration (10 MHz).
	maxClockFreq = 10 * physic.MegaHertz
)

// txer is the part of spi.Conn the transport uses
type txer interface {
	Tx(w, r []byte) error
}

// Transport implements fpga.Transport over SPI
type Transport struct {
	port    io.Closer
	conn    txer
	name    string
	timeout time.Duration
}

// Open initializes the host drivers and connects to the SPI port named in
// cfg. It satisfies fpga.TransportFactory.
func Open(cfg fpga.PortConfig) (fpga.Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fpga.NewConnectionError("open", cfg.Name, fmt.Errorf("%w: periph host init: %w", fpga.ErrPortOpen, err))
	}

	port, err := spireg.Open(cfg.Name)
	if err != nil {
		return nil, fpga.NewConnectionError("open", cfg.Name, fmt.Errorf("%w: %w", fpga.ErrDeviceNotFound, err))
	}

	conn, err := port.Connect(clockFrequency(cfg.SPISpeedHz), spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fpga.NewConnectionError("open", cfg.Name, fmt.Errorf("%w: connect: %w", fpga.ErrPortOpen, err))
	}

	return newTransport(port, conn, cfg.Name, cfg.ReadTimeout), nil
}

func newTransport(port io.Closer, conn txer, name string, timeout time.Duration) *Transport {
	if timeout <= 0 {
		timeout = fpga.DefaultReadTimeout
	}
	return &Transport{
		port:    port,
		conn:    conn,
		name:    name,
		timeout: timeout,
	}
}

// clockFrequency clamps the configured speed to what the transport supports
func clockFrequency(hz int64) physic.Frequency {
	if hz <= 0 {
		hz = fpga.DefaultSPISpeedHz
	}
	freq := physic.Frequency(hz) * physic.Hertz
	if freq > maxClockFreq {
		return maxClockFreq
	}
	return freq
}

// Transact shifts out the request frame and polls for the response
func (t *Transport) Transact(frame []byte) ([]byte, error) {
	if len(frame) != fpga.FrameSize {
		return nil, fpga.NewValidationError("transact",
			fmt.Errorf("%w: got %d", fpga.ErrInvalidFrameLength, len(frame)))
	}

	scratch := make([]byte, fpga.FrameSize)
	if err := t.conn.Tx(frame, scratch); err != nil {
		return nil, fpga.NewProtocolError("write", t.name, fmt.Errorf("%w: %w", fpga.ErrTransportWrite, err))
	}

	idle := make([]byte, fpga.FrameSize)
	deadline := time.Now().Add(t.timeout)
	for {
		response := make([]byte, fpga.FrameSize)
		if err := t.conn.Tx(idle, response); err != nil {
			return nil, fpga.NewProtocolError("read", t.name, fmt.Errorf("%w: %w", fpga.ErrTransportRead, err))
		}
		if fpga.Mode(response[0]).Valid() {
			return response, nil
		}
		if !time.Now().Before(deadline) {
			return nil, fpga.NewShortResponseError("read", t.name, 0)
		}
		time.Sleep(pollInterval)
	}
}

// Close releases the SPI port
func (t *Transport) Close() error {
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close SPI port %s: %w", t.name, err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() fpga.TransportType {
	return fpga.TransportSPI
}
