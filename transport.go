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
	"sync/atomic"
	"time"
)

// Transport is one open link to the accelerator. It is obtained from a
// TransportFactory for a single transaction and closed when that
// transaction ends.
type Transport interface {
	// Transact writes one request frame and reads exactly one response frame
	Transact(frame []byte) ([]byte, error)

	// Close releases the underlying device handle
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportSPI represents SPI bus transport.
	TransportSPI TransportType = "spi"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// PortConfig describes how to reach the accelerator
type PortConfig struct {
	// Name is the device path, e.g. /dev/ttyUSB0, COM3 or an SPI port name
	Name string
	// Transport selects the link type
	Transport TransportType
	// BaudRate applies to UART links
	BaudRate int
	// SPISpeedHz applies to SPI links
	SPISpeedHz int64
	// ReadTimeout bounds how long a transaction waits for the response
	ReadTimeout time.Duration
}

// Default link settings
const (
	DefaultPortName    = "/dev/ttyUSB0"
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 2 * time.Second
	DefaultSPISpeedHz  = 1_000_000
)

// DefaultPortConfig returns the conventional UART configuration
func DefaultPortConfig() PortConfig {
	return PortConfig{
		Name:        DefaultPortName,
		Transport:   TransportUART,
		BaudRate:    DefaultBaudRate,
		SPISpeedHz:  DefaultSPISpeedHz,
		ReadTimeout: DefaultReadTimeout,
	}
}

// TransportFactory opens a fresh transport. Errors are reported to callers as
// connection errors.
type TransportFactory func(cfg PortConfig) (Transport, error)

// Port is the byte-stream view of an open serial device. go.bug.st/serial
// ports satisfy it directly.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// ExchangeFrame performs one write-then-read exchange on an open port. It
// never retries and never closes the port: the caller owns the handle.
//
// The read stops when a full frame has arrived or timeout has elapsed. A
// reader that blocks past the timeout is abandoned; closing the port
// releases it.
func ExchangeFrame(port Port, portName string, frame []byte, timeout time.Duration) ([]byte, error) {
	if len(frame) != FrameSize {
		return nil, NewValidationError("transact", fmt.Errorf("%w: got %d", ErrInvalidFrameLength, len(frame)))
	}
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	if err := writeFrame(port, frame); err != nil {
		return nil, NewProtocolError("write", portName, err)
	}
	debugf("wrote %d bytes to %s", len(frame), portName)

	if err := port.SetReadTimeout(timeout); err != nil {
		return nil, NewProtocolError("read", portName, fmt.Errorf("%w: set read timeout: %w", ErrTransportRead, err))
	}

	type result struct {
		err error
		n   int
	}
	var progress atomic.Int64
	resultChan := make(chan result, 1)
	buf := make([]byte, FrameSize)
	deadline := time.Now().Add(timeout)

	go func() {
		n, err := readFrame(port, buf, deadline, &progress)
		resultChan <- result{err: err, n: n}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-resultChan:
		if res.err != nil {
			return nil, NewProtocolError("read", portName, fmt.Errorf("%w after %d bytes: %w", ErrTransportRead, res.n, res.err))
		}
		if res.n < FrameSize {
			debugf("short response from %s: %d bytes", portName, res.n)
			return nil, NewShortResponseError("read", portName, res.n)
		}
		debugf("read %d bytes from %s", res.n, portName)
		return buf, nil
	case <-timer.C:
		received := int(progress.Load())
		debugf("read timeout on %s after %d bytes", portName, received)
		return nil, NewShortResponseError("read", portName, received)
	}
}

// writeFrame writes all of frame, looping over short writes
func writeFrame(w io.Writer, frame []byte) error {
	written := 0
	for written < len(frame) {
		n, err := w.Write(frame[written:])
		written += n
		if err != nil {
			return fmt.Errorf("%w after %d bytes: %w", ErrTransportWrite, written, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: zero-length write after %d bytes", ErrTransportWrite, written)
		}
	}
	return nil
}

// readFrame fills buf until it is full, the deadline passes, or a read
// returns no data. A serial port returns (0, nil) when its read timeout
// expires; EOF is treated the same way.
func readFrame(r io.Reader, buf []byte, deadline time.Time, progress *atomic.Int64) (int, error) {
	got := 0
	for got < len(buf) && time.Now().Before(deadline) {
		n, err := r.Read(buf[got:])
		got += n
		progress.Store(int64(got))
		if err != nil {
			if errors.Is(err, io.EOF) {
				return got, nil
			}
			return got, err
		}
		if n == 0 {
			return got, nil
		}
	}
	return got, nil
}

// PortTransport adapts an open Port to the Transport interface
type PortTransport struct {
	port    Port
	name    string
	kind    TransportType
	timeout time.Duration
}

// NewPortTransport wraps port. timeout bounds each response read.
func NewPortTransport(port Port, name string, kind TransportType, timeout time.Duration) *PortTransport {
	return &PortTransport{
		port:    port,
		name:    name,
		kind:    kind,
		timeout: timeout,
	}
}

// Transact writes frame and reads the 64-byte response
func (t *PortTransport) Transact(frame []byte) ([]byte, error) {
	return ExchangeFrame(t.port, t.name, frame, t.timeout)
}

// Close closes the port
func (t *PortTransport) Close() error {
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", t.name, err)
	}
	return nil
}

// Type returns the transport type
func (t *PortTransport) Type() TransportType {
	return t.kind
}
