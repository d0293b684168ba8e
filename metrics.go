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
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels used by Metrics
const (
	outcomeSuccess = "success"
)

// Metrics records transaction outcomes for a Device
type Metrics struct {
	transactions  *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	responseBytes prometheus.Histogram
}

// NewMetrics creates the transaction collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fpga",
				Name:      "transactions_total",
				Help:      "Total FPGA transactions by mode and outcome.",
			},
			[]string{"mode", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fpga",
				Name:      "transaction_duration_seconds",
				Help:      "FPGA transaction duration in seconds, connection setup included.",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"mode"},
		),
		responseBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "fpga",
				Name:      "response_bytes",
				Help:      "Bytes received per exchange, including short responses.",
				Buckets:   []float64{0, 16, 32, 48, 63, 64},
			},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.transactions, m.duration, m.responseBytes} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register fpga metrics: %w", err)
		}
	}
	return m, nil
}

// observe records one finished transaction. A nil receiver is a no-op.
func (m *Metrics) observe(tx *Transaction) {
	if m == nil || tx == nil {
		return
	}
	mode := tx.Mode.String()
	outcome := outcomeSuccess
	if tx.Err != nil {
		outcome = GetErrorKind(tx.Err).String()
	}
	m.transactions.WithLabelValues(mode, outcome).Inc()
	m.duration.WithLabelValues(mode).Observe(tx.Duration.Seconds())
	if tx.State == StateDone || tx.FailedIn == StateTransacting {
		m.responseBytes.Observe(float64(tx.Received))
	}
}
