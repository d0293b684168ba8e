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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	fpga "github.com/ZaparooProject/go-fpga"
	"github.com/ZaparooProject/go-fpga/config"
	"github.com/ZaparooProject/go-fpga/dispatch"
	"github.com/ZaparooProject/go-fpga/internal/retry"
	fpgatest "github.com/ZaparooProject/go-fpga/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvPort, config.EnvBaudRate, config.EnvReadTimeout,
		config.EnvTransport, config.EnvSPISpeed, config.EnvRetryAttempts,
	} {
		t.Setenv(key, "")
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "fpga.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = \"COM3\"\nbaud_rate = 9600\nread_timeout = \"1s\"\n"), 0o600))
	t.Setenv(config.EnvBaudRate, "57600")
	t.Setenv(config.EnvReadTimeout, "3s")

	flags := &globalFlags{}
	root := buildRootCommand(flags)
	require.NoError(t, root.ParseFlags([]string{"--config", path, "--timeout", "500ms", "--retries", "2"}))

	cfg, err := resolveConfig(root, flags)
	require.NoError(t, err)
	assert.Equal(t, "COM3", cfg.Port.Name, "file")
	assert.Equal(t, 57600, cfg.Port.BaudRate, "env beats file")
	assert.Equal(t, 500*time.Millisecond, cfg.Port.ReadTimeout, "flag beats env")
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)
}

func TestResolveConfigInvalid(t *testing.T) {
	clearEnv(t)

	flags := &globalFlags{}
	root := buildRootCommand(flags)
	require.NoError(t, root.ParseFlags([]string{"--transport", "I2C"}))

	_, err := resolveConfig(root, flags)
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestFactoryFor(t *testing.T) {
	t.Parallel()

	for _, tt := range []fpga.TransportType{fpga.TransportUART, fpga.TransportSPI} {
		f, err := factoryFor(tt)
		require.NoError(t, err)
		assert.NotNil(t, f)
	}
	_, err := factoryFor(fpga.TransportMock)
	require.Error(t, err)
}

func TestServeLines(t *testing.T) {
	t.Parallel()

	transport := &fpga.MockTransport{TransactFunc: func(frame []byte) ([]byte, error) {
		if frame[0] == byte(fpga.ModeDecrypt) {
			return fpgatest.EchoWithData(frame, fpgatest.PadBlock([]byte("HI"))), nil
		}
		return fpgatest.EchoWithData(frame, fpgatest.TestCiphertext), nil
	}}
	factory := &fpga.MockFactory{Transport: transport}
	device, err := fpga.New(factory.Open, fpga.WithPortName("/dev/ttyTEST"))
	require.NoError(t, err)
	d := dispatch.New(device, retry.Default())

	in := strings.NewReader(strings.Join([]string{
		"encrypt HELLO",
		"",
		"decrypt " + strings.Repeat("aa", 16) + " " + strings.Repeat("11", 16) + " " + strings.Repeat("22", 16),
		"decrypt aa",
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, serveLines(context.Background(), d, in, &out))

	got := out.String()
	assert.Contains(t, got, "ciphertext: "+strings.Repeat("aa", 16))
	assert.Contains(t, got, "plaintext: HI")
	assert.Contains(t, got, "usage: decrypt")
	assert.Equal(t, 2, factory.Opens())
}

func TestServeLinesCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = w.Close()
		_ = r.Close()
	})

	d := dispatch.New(nil, retry.Default())
	require.NoError(t, serveLines(ctx, d, r, &bytes.Buffer{}))
}

func TestUserError(t *testing.T) {
	t.Parallel()

	err := userError(fpga.NewConnectionError("open", "COM3", fpga.ErrDeviceNotFound))
	assert.EqualError(t, err, "hardware not connected")
}
