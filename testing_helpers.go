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
	"sync"
	"time"
)

// MockTransport is a scripted Transport that counts calls.
type MockTransport struct {
	TransactFunc func(frame []byte) ([]byte, error)
	CloseErr     error
	lastFrame    []byte
	mu           sync.Mutex
	transacts    int
	closes       int
}

// NewMockTransport creates a mock whose Transact replies with response
func NewMockTransport(response []byte) *MockTransport {
	return &MockTransport{
		TransactFunc: func([]byte) ([]byte, error) {
			return append([]byte(nil), response...), nil
		},
	}
}

// Transact records the frame and calls TransactFunc
func (m *MockTransport) Transact(frame []byte) ([]byte, error) {
	m.mu.Lock()
	m.transacts++
	m.lastFrame = append([]byte(nil), frame...)
	fn := m.TransactFunc
	m.mu.Unlock()

	if fn == nil {
		return nil, ErrNoResponse
	}
	return fn(frame)
}

// Close counts close calls
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return m.CloseErr
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// TransactCalls returns how many times Transact ran
func (m *MockTransport) TransactCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transacts
}

// CloseCalls returns how many times Close ran
func (m *MockTransport) CloseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// LastFrame returns a copy of the last frame passed to Transact
func (m *MockTransport) LastFrame() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.lastFrame...)
}

// MockFactory hands out one MockTransport and counts how often it was opened
type MockFactory struct {
	Transport *MockTransport
	OpenErr   error
	lastCfg   PortConfig
	mu        sync.Mutex
	opens     int
}

// Open implements TransportFactory
func (f *MockFactory) Open(cfg PortConfig) (Transport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	f.lastCfg = cfg
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	if f.Transport == nil {
		return nil, nil
	}
	return f.Transport, nil
}

// Opens returns the number of Open calls
func (f *MockFactory) Opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

// LastConfig returns the configuration passed to the last Open
func (f *MockFactory) LastConfig() PortConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCfg
}

// errMockPortClosed is returned by a MockPort after Close
var errMockPortClosed = errors.New("mock port closed")

// MockPort is a scripted Port. Reads return the Chunks in order; once they
// are used up the port either blocks until Close (Stall) or reports a serial
// read timeout by returning (0, nil).
type MockPort struct {
	WriteErr    error
	closed      chan struct{}
	Chunks      [][]byte
	written     []byte
	readTimeout time.Duration
	mu          sync.Mutex
	closes      int
	WritePanic  bool
	Stall       bool
}

// NewMockPort creates a port that replies with chunks
func NewMockPort(chunks ...[]byte) *MockPort {
	return &MockPort{
		Chunks: chunks,
		closed: make(chan struct{}),
	}
}

// Write records p unless WriteErr or WritePanic is set
func (p *MockPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.WritePanic {
		panic("mock port write fault")
	}
	if p.WriteErr != nil {
		return 0, p.WriteErr
	}
	p.written = append(p.written, b...)
	return len(b), nil
}

// Read returns the next scripted chunk
func (p *MockPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	if len(p.Chunks) > 0 {
		chunk := p.Chunks[0]
		n := copy(b, chunk)
		if n < len(chunk) {
			p.Chunks[0] = chunk[n:]
		} else {
			p.Chunks = p.Chunks[1:]
		}
		p.mu.Unlock()
		return n, nil
	}
	stall := p.Stall
	p.mu.Unlock()

	if stall {
		<-p.closed
		return 0, errMockPortClosed
	}
	return 0, nil
}

// SetReadTimeout records the timeout
func (p *MockPort) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readTimeout = t
	return nil
}

// Close releases any stalled reader
func (p *MockPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closes == 0 {
		close(p.closed)
	}
	p.closes++
	return nil
}

// Written returns everything written to the port
func (p *MockPort) Written() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.written...)
}

// CloseCalls returns how many times Close ran
func (p *MockPort) CloseCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

// ReadTimeout returns the last timeout set on the port
func (p *MockPort) ReadTimeout() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readTimeout
}
