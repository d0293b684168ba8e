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
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	loggerMu sync.RWMutex
	logger   = zerolog.Nop()
)

// SetLogger replaces the package logger
func SetLogger(l zerolog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// SetDebugEnabled switches debug output to a console writer on stderr, or
// silences it again.
func SetDebugEnabled(enabled bool) {
	if !enabled {
		SetLogger(zerolog.Nop())
		return
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	SetLogger(zerolog.New(out).With().Timestamp().Str("component", "fpga").Logger().Level(zerolog.DebugLevel))
}

// Logger returns the package logger
func Logger() zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

func debugf(format string, args ...any) {
	l := Logger()
	l.Debug().Msg(fmt.Sprintf(format, args...))
}

func debugln(args ...any) {
	l := Logger()
	l.Debug().Msg(fmt.Sprint(args...))
}
