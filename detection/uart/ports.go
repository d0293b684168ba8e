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

// Package uart lists serial ports through the go.bug.st/serial enumerator.
package uart

import (
	"fmt"
	"sort"

	"github.com/ZaparooProject/go-fpga/detection"
	"go.bug.st/serial/enumerator"
)

type enumerateFunc func() ([]*enumerator.PortDetails, error)

// ListPorts enumerates serial ports and applies opts. It returns
// detection.ErrNoPorts when nothing is left after filtering.
func ListPorts(opts detection.Options) ([]detection.PortInfo, error) {
	return listPorts(enumerator.GetDetailedPortsList, canAccess, opts)
}

func listPorts(
	enumerate enumerateFunc,
	access func(path string) bool,
	opts detection.Options,
) ([]detection.PortInfo, error) {
	details, err := enumerate()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	ports := make([]detection.PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil || d.Name == "" {
			continue
		}
		info := detection.PortInfo{
			Path:         d.Name,
			IsUSB:        d.IsUSB,
			Product:      d.Product,
			SerialNumber: d.SerialNumber,
			Accessible:   access(d.Name),
		}
		if d.IsUSB {
			info.VIDPID = detection.FormatVIDPID(d.VID, d.PID)
		}
		ports = append(ports, info)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Path < ports[j].Path })

	ports = detection.Filter(ports, opts)
	if len(ports) == 0 {
		return nil, detection.ErrNoPorts
	}
	return ports, nil
}
