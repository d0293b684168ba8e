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

// Package detection finds serial ports that may have an FPGA link attached.
// Listing is passive: ports are enumerated and filtered, never probed with a
// frame, because an unsolicited 64-byte frame would be processed as a real
// request by the device.
package detection

import (
	"errors"
	"fmt"
)

// ErrNoPorts is returned when enumeration succeeds but nothing survives
// filtering
var ErrNoPorts = errors.New("no candidate serial ports found")

// PortInfo describes one candidate port
type PortInfo struct {
	Path         string
	VIDPID       string
	Product      string
	SerialNumber string
	IsUSB        bool
	// Accessible is false when the current user cannot open the port
	Accessible bool
}

// String renders a one-line description of the port
func (p PortInfo) String() string {
	s := p.Path
	if p.VIDPID != "" {
		s += " [" + p.VIDPID + "]"
	}
	if p.Product != "" {
		s += " " + p.Product
	}
	if !p.Accessible {
		s += " (no access)"
	}
	return s
}

// Options controls filtering of the port list
type Options struct {
	// Blocklist holds VID:PID values to skip
	Blocklist []string
	// IgnorePaths holds device paths to skip
	IgnorePaths []string
	// USBOnly drops ports that are not USB serial adapters
	USBOnly bool
}

// DefaultOptions returns options with the default blocklist
func DefaultOptions() Options {
	return Options{Blocklist: DefaultBlocklist()}
}

// Filter applies opts to ports and returns the survivors in order
func Filter(ports []PortInfo, opts Options) []PortInfo {
	out := make([]PortInfo, 0, len(ports))
	for _, p := range ports {
		if opts.USBOnly && !p.IsUSB {
			continue
		}
		if p.VIDPID != "" && IsBlocked(p.VIDPID, opts.Blocklist) {
			continue
		}
		if IsPathIgnored(p.Path, opts.IgnorePaths) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FormatVIDPID formats vendor and product ids as VID:PID
func FormatVIDPID(vid, pid string) string {
	if vid == "" || pid == "" {
		return ""
	}
	return ParseVIDPID(fmt.Sprintf("%s:%s", vid, pid))
}
