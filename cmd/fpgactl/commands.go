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
	"errors"
	"fmt"
	"strings"
	"time"

	fpga "github.com/ZaparooProject/go-fpga"
	"github.com/ZaparooProject/go-fpga/config"
	"github.com/ZaparooProject/go-fpga/detection/uart"
	"github.com/ZaparooProject/go-fpga/dispatch"
	"github.com/ZaparooProject/go-fpga/transport/spi"
	uarttransport "github.com/ZaparooProject/go-fpga/transport/uart"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	port       string
	transport  string
	timeout    time.Duration
	baud       int
	retries    int
	debug      bool
}

func newRootCommand() *cobra.Command {
	return buildRootCommand(&globalFlags{})
}

func buildRootCommand(flags *globalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:           "fpgactl",
		Short:         "Talk to an FPGA AEAD accelerator",
		Long:          "fpgactl encrypts and decrypts 16-byte blocks on an FPGA accelerator using 64-byte frames.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			fpga.SetDebugEnabled(flags.debug)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "TOML configuration file")
	pf.StringVarP(&flags.port, "port", "p", "", "device path, e.g. /dev/ttyUSB0 or COM3")
	pf.StringVarP(&flags.transport, "transport", "t", "", "link type: uart or spi")
	pf.DurationVar(&flags.timeout, "timeout", 0, "response timeout")
	pf.IntVar(&flags.baud, "baud", 0, "UART baud rate")
	pf.IntVar(&flags.retries, "retries", 0, "attempts per request")
	pf.BoolVar(&flags.debug, "debug", false, "log protocol steps to stderr")

	root.AddCommand(
		newEncryptCommand(flags),
		newDecryptCommand(flags),
		newPortsCommand(flags),
		newServeCommand(flags),
	)
	return root
}

// resolveConfig layers the config file, the environment and explicit flags
func resolveConfig(cmd *cobra.Command, flags *globalFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.ApplyEnv(&cfg, nil); err != nil {
		return config.Config{}, err
	}

	changed := cmd.Flags().Changed
	if changed("port") {
		cfg.Port.Name = flags.port
	}
	if changed("transport") {
		cfg.Port.Transport = fpga.TransportType(strings.ToLower(flags.transport))
	}
	if changed("timeout") {
		cfg.Port.ReadTimeout = flags.timeout
	}
	if changed("baud") {
		cfg.Port.BaudRate = flags.baud
	}
	if changed("retries") {
		cfg.Retry.MaxAttempts = flags.retries
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func factoryFor(t fpga.TransportType) (fpga.TransportFactory, error) {
	switch t {
	case fpga.TransportUART:
		return uarttransport.Open, nil
	case fpga.TransportSPI:
		return spi.Open, nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", t)
	}
}

func newDispatcher(cfg config.Config, opts ...fpga.Option) (*dispatch.Dispatcher, error) {
	factory, err := factoryFor(cfg.Port.Transport)
	if err != nil {
		return nil, err
	}
	device, err := fpga.New(factory, append([]fpga.Option{fpga.WithPortConfig(cfg.Port)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return dispatch.New(device, cfg.Retry), nil
}

// userError hides internal detail behind the user-facing message. The
// detail is logged by the device when --debug is set.
func userError(err error) error {
	return errors.New(fpga.UserMessage(err))
}

func newEncryptCommand(flags *globalFlags) *cobra.Command {
	var keyHex, nonceHex string
	cmd := &cobra.Command{
		Use:   "encrypt <message>",
		Short: "Encrypt up to 16 bytes",
		Long:  "Encrypt a message of at most 16 bytes. Without --key or --nonce a random value is generated and printed.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			d, err := newDispatcher(cfg)
			if err != nil {
				return err
			}
			res, err := d.Encrypt(strings.Join(args, " "), keyHex, nonceHex)
			if err != nil {
				return userError(err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), dispatch.RenderEncrypt(res))
			return nil
		},
	}
	cmd.Flags().StringVar(&keyHex, "key", "", "16-byte key as hex")
	cmd.Flags().StringVar(&nonceHex, "nonce", "", "16-byte nonce as hex")
	return cmd
}

func newDecryptCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt <ciphertext> <nonce> <key>",
		Short: "Decrypt one 16-byte block",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			d, err := newDispatcher(cfg)
			if err != nil {
				return err
			}
			res, err := d.Decrypt(args[0], args[1], args[2])
			if err != nil {
				return userError(err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), dispatch.RenderDecrypt(res))
			return nil
		},
	}
}

func newPortsCommand(flags *globalFlags) *cobra.Command {
	var usbOnly bool
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports that could carry the link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			opts := cfg.Detection
			if cmd.Flags().Changed("usb-only") {
				opts.USBOnly = usbOnly
			}
			ports, err := uart.ListPorts(opts)
			if err != nil {
				return err
			}
			for _, p := range ports {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), p.String())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&usbOnly, "usb-only", false, "only list USB serial adapters")
	return cmd
}
