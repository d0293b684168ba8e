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

package spi

import (
	"errors"
	"sync"
	"testing"
	"time"

	fpga "github.com/ZaparooProject/go-fpga"
	fpgatest "github.com/ZaparooProject/go-fpga/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

// fakeBus answers with idle frames for busyPolls polls, then with response
type fakeBus struct {
	txErr     error
	response  []byte
	written   [][]byte
	mu        sync.Mutex
	busyPolls int
	closes    int
}

func (b *fakeBus) Tx(w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.txErr != nil {
		return b.txErr
	}
	b.written = append(b.written, append([]byte(nil), w...))
	if len(b.written) == 1 {
		return nil
	}
	if b.busyPolls > 0 {
		b.busyPolls--
		return nil
	}
	copy(r, b.response)
	return nil
}

func (b *fakeBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closes++
	return nil
}

func TestTransactPollsUntilReady(t *testing.T) {
	t.Parallel()

	request, err := fpga.EncodeFrame(fpga.ModeEncrypt, fpgatest.TestKey, fpgatest.TestNonce, []byte("HELLO"))
	require.NoError(t, err)
	bus := &fakeBus{response: fpgatest.EchoWithData(request, fpgatest.TestCiphertext), busyPolls: 3}
	transport := newTransport(bus, bus, "SPI0.0", time.Second)

	got, err := transport.Transact(request)
	require.NoError(t, err)
	assert.Equal(t, bus.response, got)
	assert.Equal(t, request, bus.written[0])
	assert.Len(t, bus.written, 5)

	require.NoError(t, transport.Close())
	assert.Equal(t, 1, bus.closes)
	assert.Equal(t, fpga.TransportSPI, transport.Type())
}

func TestTransactTimesOutWhenNeverReady(t *testing.T) {
	t.Parallel()

	request, err := fpga.EncodeFrame(fpga.ModeDecrypt, fpgatest.TestKey, fpgatest.TestNonce, fpgatest.TestCiphertext)
	require.NoError(t, err)
	bus := &fakeBus{busyPolls: 1 << 30}
	transport := newTransport(bus, bus, "SPI0.0", 30*time.Millisecond)

	start := time.Now()
	_, err = transport.Transact(request)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, fpga.IsProtocolError(err))
	assert.ErrorIs(t, err, fpga.ErrNoResponse)
	assert.Less(t, elapsed, time.Second)
}

func TestTransactBusError(t *testing.T) {
	t.Parallel()

	request, err := fpga.EncodeFrame(fpga.ModeEncrypt, fpgatest.TestKey, fpgatest.TestNonce, nil)
	require.NoError(t, err)
	bus := &fakeBus{txErr: errors.New("spi: bus fault")}
	transport := newTransport(bus, bus, "SPI0.0", time.Second)

	_, err = transport.Transact(request)
	require.Error(t, err)
	assert.True(t, fpga.IsProtocolError(err))
	assert.ErrorIs(t, err, fpga.ErrTransportWrite)
}

func TestTransactRejectsShortFrame(t *testing.T) {
	t.Parallel()

	bus := &fakeBus{}
	transport := newTransport(bus, bus, "SPI0.0", time.Second)

	_, err := transport.Transact(make([]byte, 10))
	require.Error(t, err)
	assert.True(t, fpga.IsValidationError(err))
	assert.Empty(t, bus.written)
}

func TestClockFrequency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hz   int64
		want physic.Frequency
	}{
		{name: "default when unset", hz: 0, want: physic.MegaHertz},
		{name: "configured", hz: 4_000_000, want: 4 * physic.MegaHertz},
		{name: "clamped", hz: 50_000_000, want: maxClockFreq},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, clockFrequency(tt.hz))
		})
	}
}
