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

// Package config loads fpgactl settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	fpga "github.com/ZaparooProject/go-fpga"
	"github.com/ZaparooProject/go-fpga/detection"
	"github.com/ZaparooProject/go-fpga/internal/retry"
)

// Environment variables consulted by ApplyEnv
const (
	EnvPort          = "FPGA_PORT"
	EnvBaudRate      = "FPGA_BAUD_RATE"
	EnvReadTimeout   = "FPGA_READ_TIMEOUT"
	EnvTransport     = "FPGA_TRANSPORT"
	EnvSPISpeed      = "FPGA_SPI_SPEED"
	EnvRetryAttempts = "FPGA_RETRY_ATTEMPTS"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete runtime configuration
type Config struct {
	MetricsAddr string
	Detection   detection.Options
	Port        fpga.PortConfig
	Retry       retry.Config
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Port:      fpga.DefaultPortConfig(),
		Retry:     retry.Default(),
		Detection: detection.DefaultOptions(),
	}
}

type fileConfig struct {
	Port        string          `toml:"port"`
	Transport   string          `toml:"transport"`
	ReadTimeout string          `toml:"read_timeout"`
	MetricsAddr string          `toml:"metrics_addr"`
	Detection   detectionConfig `toml:"detection"`
	Retry       retryConfig     `toml:"retry"`
	BaudRate    int             `toml:"baud_rate"`
	SPISpeedHz  int64           `toml:"spi_speed_hz"`
}

type retryConfig struct {
	ProtocolDelay   string `toml:"protocol_delay"`
	ConnectionDelay string `toml:"connection_delay"`
	MaxAttempts     int    `toml:"max_attempts"`
}

type detectionConfig struct {
	Blocklist   []string `toml:"blocklist"`
	IgnorePaths []string `toml:"ignore_paths"`
	USBOnly     bool     `toml:"usb_only"`
}

// Load reads path on top of Default. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
	}

	if meta.IsDefined("port") {
		cfg.Port.Name = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("transport") {
		cfg.Port.Transport = fpga.TransportType(strings.ToLower(strings.TrimSpace(raw.Transport)))
	}
	if meta.IsDefined("baud_rate") {
		cfg.Port.BaudRate = raw.BaudRate
	}
	if meta.IsDefined("spi_speed_hz") {
		cfg.Port.SPISpeedHz = raw.SPISpeedHz
	}
	if meta.IsDefined("read_timeout") {
		if cfg.Port.ReadTimeout, err = parseDuration("read_timeout", raw.ReadTimeout); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	if meta.IsDefined("retry", "max_attempts") {
		cfg.Retry.MaxAttempts = raw.Retry.MaxAttempts
	}
	if meta.IsDefined("retry", "protocol_delay") {
		if cfg.Retry.ProtocolDelay, err = parseDuration("retry.protocol_delay", raw.Retry.ProtocolDelay); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("retry", "connection_delay") {
		if cfg.Retry.ConnectionDelay, err = parseDuration("retry.connection_delay", raw.Retry.ConnectionDelay); err != nil {
			return Config{}, err
		}
	}

	if meta.IsDefined("detection", "blocklist") {
		cfg.Detection.Blocklist = raw.Detection.Blocklist
	}
	if meta.IsDefined("detection", "ignore_paths") {
		cfg.Detection.IgnorePaths = raw.Detection.IgnorePaths
	}
	if meta.IsDefined("detection", "usb_only") {
		cfg.Detection.USBOnly = raw.Detection.USBOnly
	}

	return cfg, nil
}

// ApplyEnv overrides cfg with any FPGA_* variables that are set, using
// lookup (os.LookupEnv when nil).
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvPort); ok {
		cfg.Port.Name = v
	}
	if v, ok := get(EnvTransport); ok {
		cfg.Port.Transport = fpga.TransportType(strings.ToLower(v))
	}
	if v, ok := get(EnvBaudRate); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvBaudRate, err)
		}
		cfg.Port.BaudRate = n
	}
	if v, ok := get(EnvSPISpeed); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvSPISpeed, err)
		}
		cfg.Port.SPISpeedHz = n
	}
	if v, ok := get(EnvReadTimeout); ok {
		d, err := parseDuration(EnvReadTimeout, v)
		if err != nil {
			return err
		}
		cfg.Port.ReadTimeout = d
	}
	if v, ok := get(EnvRetryAttempts); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvRetryAttempts, err)
		}
		cfg.Retry.MaxAttempts = n
	}
	return nil
}

// Validate checks that cfg describes a usable link
func (c Config) Validate() error {
	if c.Port.Name == "" {
		return fmt.Errorf("%w: port is required", ErrInvalid)
	}
	switch c.Port.Transport {
	case fpga.TransportUART:
		if c.Port.BaudRate <= 0 {
			return fmt.Errorf("%w: baud_rate must be positive", ErrInvalid)
		}
	case fpga.TransportSPI:
		if c.Port.SPISpeedHz <= 0 {
			return fmt.Errorf("%w: spi_speed_hz must be positive", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalid, c.Port.Transport)
	}
	if c.Port.ReadTimeout <= 0 {
		return fmt.Errorf("%w: read_timeout must be positive", ErrInvalid)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry.max_attempts must be at least 1", ErrInvalid)
	}
	if c.Retry.ProtocolDelay < 0 || c.Retry.ConnectionDelay < 0 {
		return fmt.Errorf("%w: retry delays cannot be negative", ErrInvalid)
	}
	return nil
}

func parseDuration(field, v string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s: %w", ErrInvalid, field, err)
	}
	return d, nil
}
