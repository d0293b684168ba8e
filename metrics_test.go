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
	"testing"

	fpgatest "github.com/ZaparooProject/go-fpga/internal/testing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordOutcomes(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	mock := &MockTransport{TransactFunc: echoFPGA(fpgatest.TestCiphertext)}
	factory := &MockFactory{Transport: mock}
	device := newTestDevice(t, factory, WithMetrics(metrics))

	_, err = device.RunEncrypt([]byte("HELLO"), fpgatest.TestKey, fpgatest.TestNonce)
	require.NoError(t, err)

	_, err = device.RunEncrypt([]byte("HELLO"), make([]byte, 15), fpgatest.TestNonce)
	require.Error(t, err)

	factory.OpenErr = errors.New("gone")
	_, err = device.RunDecrypt(fpgatest.TestCiphertext, fpgatest.TestKey, fpgatest.TestNonce)
	require.Error(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.transactions.WithLabelValues("encrypt", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.transactions.WithLabelValues("encrypt", "validation")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.transactions.WithLabelValues("decrypt", "connection")), 0)
	assert.Equal(t, 3, testutil.CollectAndCount(metrics.transactions))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.responseBytes))
}

func TestMetricsDoubleRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	require.Error(t, err)
}

func TestMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var metrics *Metrics
	assert.NotPanics(t, func() { metrics.observe(&Transaction{Mode: ModeEncrypt}) })

	unregistered, err := NewMetrics(nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() { unregistered.observe(&Transaction{Mode: ModeDecrypt, State: StateDone}) })
}
