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

package detection

import (
	"path/filepath"
	"strings"
)

// DefaultBlocklist returns USB VID:PID pairs that are never offered as FPGA
// links. These are debug probes that enumerate a serial interface next to
// their JTAG channel; writing frames to them corrupts a running flash session.
func DefaultBlocklist() []string {
	return []string{
		"0403:6010", // FT2232 JTAG/UART combo used by most dev boards' programmer
		"1366:0105", // SEGGER J-Link VCOM
	}
}

// IsBlocked reports whether vidpid appears in blocklist, ignoring case.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.TrimSpace(vidpid)
	for _, blocked := range blocklist {
		if strings.EqualFold(vidpid, strings.TrimSpace(blocked)) {
			return true
		}
	}
	return false
}

var (
	vidPrefixes = []string{"VID:", "VENDOR=", "VID="}
	pidPrefixes = []string{"PID:", "PRODUCT=", "PID="}
)

// ParseVIDPID extracts VID:PID from a USB descriptor string such as
// "VID:0403 PID:6001", "vendor=0403 product=6001" or "0403:6001".
// The result is upper case, or empty when nothing matches.
func ParseVIDPID(descriptor string) string {
	descriptor = strings.ToUpper(descriptor)

	vid := valueAfter(descriptor, vidPrefixes)
	pid := valueAfter(descriptor, pidPrefixes)
	if vid != "" && pid != "" {
		return vid + ":" + pid
	}

	if left, right, ok := strings.Cut(descriptor, ":"); ok && !strings.Contains(right, ":") {
		if isHex(left) && isHex(right) {
			return descriptor
		}
	}
	return ""
}

// valueAfter returns the hex run following the first prefix found
func valueAfter(s string, prefixes []string) string {
	for _, prefix := range prefixes {
		if idx := strings.Index(s, prefix); idx >= 0 {
			return leadingHex(s[idx+len(prefix):])
		}
	}
	return ""
}

// leadingHex returns the first run of upper-case hex digits in s
func leadingHex(s string) string {
	start := strings.IndexFunc(s, isUpperHexRune)
	if start < 0 {
		return ""
	}
	s = s[start:]
	if end := strings.IndexFunc(s, func(r rune) bool { return !isUpperHexRune(r) }); end >= 0 {
		return s[:end]
	}
	return s
}

func isUpperHexRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F')
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(strings.ToUpper(s), func(r rune) bool { return !isUpperHexRune(r) }) < 0
}

// IsPathIgnored reports whether devicePath matches one of ignorePaths, either
// exactly or after cleaning and case folding.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}
	normalized := normalizePath(devicePath)
	for _, ignore := range ignorePaths {
		if ignore == "" {
			continue
		}
		if devicePath == ignore || normalized == normalizePath(ignore) {
			return true
		}
	}
	return false
}

// normalizePath cleans path and folds case so COM2 and com2 compare equal
func normalizePath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
