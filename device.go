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
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrInvalidCiphertextLength is returned when a decrypt request is not one full block
var ErrInvalidCiphertextLength = errors.New("ciphertext must be exactly 16 bytes")

// ErrNoTransportFactory is returned by New when no factory is supplied
var ErrNoTransportFactory = errors.New("no transport factory")

// State is a step of the transaction state machine
type State int

// Transaction states. Failed is reachable from every non-terminal state.
const (
	StateIdle State = iota
	StateValidating
	StateConnecting
	StateTransacting
	StateDecoding
	StateDone
	StateFailed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateConnecting:
		return "connecting"
	case StateTransacting:
		return "transacting"
	case StateDecoding:
		return "decoding"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Request is one operation to run on the accelerator
type Request struct {
	Key   []byte
	Nonce []byte
	Data  []byte
	Mode  Mode
}

// Transaction records a single request/response round trip. It lives only
// for the duration of one call.
type Transaction struct {
	Started  time.Time
	Err      error
	Request  *Frame
	Response *Frame // nil unless State is StateDone
	Duration time.Duration
	Received int // response bytes read, including short responses
	Mode     Mode
	State    State
	FailedIn State // the state that was active when the transaction failed
}

func (tx *Transaction) setState(s State) {
	debugf("transaction %s: %s -> %s", tx.Mode, tx.State, s)
	tx.State = s
}

func (tx *Transaction) fail(err error) {
	tx.FailedIn = tx.State
	tx.State = StateFailed
	tx.Err = err
}

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// Factory opens a fresh transport for every transaction
	Factory TransportFactory
	// Metrics is optional
	Metrics *Metrics
	// Rand generates keys and nonces when RunEncrypt is not given them
	Rand io.Reader
	// Port describes the link handed to Factory
	Port PortConfig
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Port: DefaultPortConfig(),
		Rand: rand.Reader,
	}
}

// Device represents one FPGA accelerator behind a serial link.
//
// Thread Safety: Device is safe for concurrent use. Each transaction opens
// its own connection and holds the device lock from open to close, so
// concurrent callers are served one at a time.
type Device struct {
	config *DeviceConfig
	mu     sync.Mutex
}

// New creates a Device that opens transports through factory
func New(factory TransportFactory, opts ...Option) (*Device, error) {
	if factory == nil {
		return nil, ErrNoTransportFactory
	}
	device := &Device{config: DefaultDeviceConfig()}
	device.config.Factory = factory

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}
	return device, nil
}

// Config returns a copy of the port configuration
func (d *Device) Config() PortConfig {
	return d.config.Port
}

// Transact runs one request through validate, connect, transact and decode.
// The returned Transaction is never nil; on failure its Err equals the
// returned *TransactionError.
func (d *Device) Transact(req Request) (*Transaction, error) {
	tx := &Transaction{Mode: req.Mode, State: StateIdle, Started: time.Now()}

	err := d.run(tx, req)
	tx.Duration = time.Since(tx.Started)
	if err != nil {
		tx.fail(err)
		l := Logger()
		l.Warn().
			Str("mode", tx.Mode.String()).
			Str("kind", GetErrorKind(err).String()).
			Str("state", tx.FailedIn.String()).
			Str("port", d.config.Port.Name).
			Err(err).
			Msg("fpga transaction failed")
	}
	d.config.Metrics.observe(tx)
	return tx, err
}

func (d *Device) run(tx *Transaction, req Request) error {
	port := d.config.Port.Name

	tx.setState(StateValidating)
	request, err := NewFrame(req.Mode, req.Key, req.Nonce, req.Data)
	if err != nil {
		return err
	}
	tx.Request = request

	d.mu.Lock()
	defer d.mu.Unlock()

	tx.setState(StateConnecting)
	transport, err := d.config.Factory(d.config.Port)
	if err != nil {
		return asTransactionError(err, KindConnection, "open", port)
	}
	if transport == nil {
		return NewConnectionError("open", port, ErrPortOpen)
	}
	defer func() {
		if closeErr := transport.Close(); closeErr != nil {
			debugf("close %s: %v", port, closeErr)
		}
	}()

	tx.setState(StateTransacting)
	resp, err := transactGuarded(transport, request.Bytes(), port)
	if err != nil {
		var te *TransactionError
		if errors.As(err, &te) {
			tx.Received = te.Received
		}
		return err
	}
	tx.Received = len(resp)

	tx.setState(StateDecoding)
	response, err := DecodeFrame(resp)
	if err != nil {
		var te *TransactionError
		if errors.As(err, &te) {
			te.Port = port
		}
		return err
	}
	if err := checkEcho(tx.Mode, response.Mode, port); err != nil {
		return err
	}
	tx.Response = response
	tx.setState(StateDone)
	return nil
}

// transactGuarded converts a panic inside the transport into a protocol
// error. The caller's deferred Close still runs exactly once.
func transactGuarded(t Transport, frame []byte, port string) (resp []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			debugln("recovered transport panic: ", r)
			resp = nil
			err = NewProtocolError("transact", port, fmt.Errorf("%w: %v", ErrTransportFault, r))
		}
	}()

	resp, err = t.Transact(frame)
	if err != nil {
		return nil, asTransactionError(err, KindProtocol, "transact", port)
	}
	return resp, nil
}

// EncryptResult is the outcome of RunEncrypt. Key and Nonce are the values
// actually sent, including generated ones.
type EncryptResult struct {
	Ciphertext [BlockSize]byte
	Key        [KeySize]byte
	Nonce      [NonceSize]byte
	Mode       Mode // echoed by the accelerator
}

// CiphertextHex returns the ciphertext as 32 lowercase hex characters
func (r *EncryptResult) CiphertextHex() string {
	return hex.EncodeToString(r.Ciphertext[:])
}

// KeyHex returns the key as hex
func (r *EncryptResult) KeyHex() string {
	return hex.EncodeToString(r.Key[:])
}

// NonceHex returns the nonce as hex
func (r *EncryptResult) NonceHex() string {
	return hex.EncodeToString(r.Nonce[:])
}

// DecryptResult is the outcome of RunDecrypt
type DecryptResult struct {
	Plaintext []byte
	Block     [BlockSize]byte // the response block before zero stripping
	Mode      Mode
	// TrailingZerosStripped is set when zero bytes were removed from the
	// end of Block. A plaintext that genuinely ended in 0x00 cannot be
	// told apart from padding.
	TrailingZerosStripped bool
}

// Text returns the plaintext interpreted as a string
func (r *DecryptResult) Text() string {
	return string(r.Plaintext)
}

// RunEncrypt encrypts up to 16 bytes of plaintext. An empty key or nonce is
// generated from the device's random source.
func (d *Device) RunEncrypt(plaintext, key, nonce []byte) (*EncryptResult, error) {
	var err error
	if len(key) == 0 {
		if key, err = d.randomBlock("key"); err != nil {
			return nil, err
		}
	}
	if len(nonce) == 0 {
		if nonce, err = d.randomBlock("nonce"); err != nil {
			return nil, err
		}
	}

	tx, err := d.Transact(Request{Mode: ModeEncrypt, Key: key, Nonce: nonce, Data: plaintext})
	if err != nil {
		return nil, err
	}

	result := &EncryptResult{Mode: tx.Response.Mode, Ciphertext: tx.Response.Data}
	copy(result.Key[:], key)
	copy(result.Nonce[:], nonce)
	return result, nil
}

// RunDecrypt decrypts one 16-byte ciphertext block
func (d *Device) RunDecrypt(ciphertext, key, nonce []byte) (*DecryptResult, error) {
	if len(ciphertext) != BlockSize {
		return nil, NewValidationError("decrypt",
			fmt.Errorf("%w: got %d", ErrInvalidCiphertextLength, len(ciphertext)))
	}

	tx, err := d.Transact(Request{Mode: ModeDecrypt, Key: key, Nonce: nonce, Data: ciphertext})
	if err != nil {
		return nil, err
	}

	plain, stripped := StripTrailingZeros(tx.Response.Data[:])
	if stripped {
		debugf("decrypt result had %d trailing zero bytes stripped", BlockSize-len(plain))
	}
	return &DecryptResult{
		Plaintext:             plain,
		Block:                 tx.Response.Data,
		Mode:                  tx.Response.Mode,
		TrailingZerosStripped: stripped,
	}, nil
}

// checkEcho confirms the response answers the request that was sent
func checkEcho(sent, echoed Mode, port string) error {
	if sent == echoed {
		return nil
	}
	return NewProtocolError("decode", port,
		fmt.Errorf("%w: sent %s, got %s", ErrModeMismatch, sent, echoed))
}

func (d *Device) randomBlock(what string) ([]byte, error) {
	buf := make([]byte, BlockSize)
	if _, err := io.ReadFull(d.config.Rand, buf); err != nil {
		return nil, NewValidationError("generate "+what, err)
	}
	return buf, nil
}
