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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		devicePath  string
		ignorePaths []string
		expected    bool
	}{
		{name: "empty ignore list", devicePath: "/dev/ttyUSB0", ignorePaths: []string{}},
		{name: "empty device path", devicePath: "", ignorePaths: []string{"/dev/ttyUSB0"}},
		{name: "exact unix path", devicePath: "/dev/ttyUSB0", ignorePaths: []string{"/dev/ttyUSB0"}, expected: true},
		{name: "exact windows path", devicePath: "COM3", ignorePaths: []string{"COM3"}, expected: true},
		{name: "case insensitive", devicePath: "com3", ignorePaths: []string{"COM3"}, expected: true},
		{name: "relative components", devicePath: "/dev/../dev/ttyACM0", ignorePaths: []string{"/dev/ttyACM0"}, expected: true},
		{name: "no match", devicePath: "/dev/ttyUSB1", ignorePaths: []string{"/dev/ttyUSB0"}},
		{
			name:        "empty entries skipped",
			devicePath:  "/dev/ttyUSB0",
			ignorePaths: []string{"", "/dev/ttyUSB0", ""},
			expected:    true,
		},
		{name: "spi device", devicePath: "/dev/spidev0.0", ignorePaths: []string{"/dev/spidev0.0"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsPathIgnored(tt.devicePath, tt.ignorePaths))
		})
	}
}

func TestParseVIDPID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		descriptor string
		expected   string
	}{
		{"VID:0403 PID:6001", "0403:6001"},
		{"vendor=1a86 product=7523", "1A86:7523"},
		{"vid=10c4 pid=ea60", "10C4:EA60"},
		{"0403:6001", "0403:6001"},
		{"2e8a:000a", "2E8A:000A"},
		{"not a descriptor", ""},
		{"zz:0001", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ParseVIDPID(tt.descriptor))
		})
	}
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBlocked("0403:6010", DefaultBlocklist()))
	assert.True(t, IsBlocked(" 1366:0105 ", DefaultBlocklist()))
	assert.False(t, IsBlocked("0403:6001", DefaultBlocklist()))
	assert.False(t, IsBlocked("0403:6010", nil))
}

func TestFilter(t *testing.T) {
	t.Parallel()

	ports := []PortInfo{
		{Path: "/dev/ttyUSB0", VIDPID: "0403:6001", IsUSB: true, Accessible: true},
		{Path: "/dev/ttyUSB1", VIDPID: "0403:6010", IsUSB: true, Accessible: true},
		{Path: "/dev/ttyS0", Accessible: true},
		{Path: "/dev/ttyACM0", VIDPID: "2E8A:000A", IsUSB: true},
	}

	t.Run("default options drop blocked", func(t *testing.T) {
		t.Parallel()
		got := Filter(ports, DefaultOptions())
		assert.Len(t, got, 3)
		assert.Equal(t, "/dev/ttyUSB0", got[0].Path)
		assert.Equal(t, "/dev/ttyS0", got[1].Path)
	})

	t.Run("usb only and ignored paths", func(t *testing.T) {
		t.Parallel()
		opts := DefaultOptions()
		opts.USBOnly = true
		opts.IgnorePaths = []string{"/dev/ttyACM0"}
		got := Filter(ports, opts)
		assert.Equal(t, []PortInfo{ports[0]}, got)
	})
}

func TestPortInfoString(t *testing.T) {
	t.Parallel()

	p := PortInfo{Path: "/dev/ttyUSB0", VIDPID: "0403:6001", Product: "FT232R", Accessible: true}
	assert.Equal(t, "/dev/ttyUSB0 [0403:6001] FT232R", p.String())

	p = PortInfo{Path: "COM3"}
	assert.Equal(t, "COM3 (no access)", p.String())

	assert.Equal(t, "0403:6001", FormatVIDPID("0403", "6001"))
	assert.Empty(t, FormatVIDPID("", "6001"))
}
