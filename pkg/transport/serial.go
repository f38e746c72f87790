// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"errors"
	"io"
	"time"

	"go.bug.st/serial"
)

// Port is the part of serial.Port used by Serial.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	Drain() error
}

// Opener opens a serial device.
type Opener func(name string, mode *serial.Mode) (Port, error)

// OpenPort opens a real serial device.
func OpenPort(name string, mode *serial.Mode) (Port, error) {
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// Serial reaches the PSU over a local serial port, 8N1.
type Serial struct {
	name    string
	mode    *serial.Mode
	timeout time.Duration
	open    Opener
	maxLine int
}

// NewSerial creates a serial transport. The port is not opened until the
// first exchange.
func NewSerial(name string, baudRate int, timeout time.Duration) *Serial {
	return NewSerialWithOpener(name, baudRate, timeout, OpenPort)
}

// NewSerialWithOpener is NewSerial with a custom port opener.
func NewSerialWithOpener(name string, baudRate int, timeout time.Duration, open Opener) *Serial {
	if open == nil {
		open = OpenPort
	}
	return &Serial{
		name: name,
		mode: &serial.Mode{
			BaudRate: baudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		timeout: timeout,
		open:    open,
		maxLine: MaxLineSize,
	}
}

// Name returns the serial device name.
func (s *Serial) Name() string {
	return s.name
}

// Write opens the port, writes frame, waits for it to leave the transmit
// buffer and closes the port.
func (s *Serial) Write(frame []byte) (err error) {
	port, err := s.acquire()
	if err != nil {
		return err
	}
	defer s.release(port, &err)

	if err := s.write(port, frame); err != nil {
		return err
	}
	if err := port.Drain(); err != nil {
		return &Error{Op: "drain", Addr: s.name, Err: err}
	}
	return nil
}

// WriteReadLine opens the port, writes frame, reads one line and closes
// the port. A read that times out ends the line.
func (s *Serial) WriteReadLine(frame []byte) (line []byte, err error) {
	port, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer s.release(port, &err)

	if err := s.write(port, frame); err != nil {
		return nil, err
	}

	lb := newLineBuffer(s.maxLine)
	chunk := make([]byte, readChunkSize)
	for {
		n, err := port.Read(chunk)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lb.line(), nil
			}
			return nil, &Error{Op: "read", Addr: s.name, Err: err}
		}
		if n == 0 {
			// Read timed out
			return lb.line(), nil
		}
		if lb.add(chunk[:n]) {
			return lb.line(), nil
		}
	}
}

func (s *Serial) acquire() (Port, error) {
	port, err := s.open(s.name, s.mode)
	if err != nil {
		return nil, &Error{Op: "open", Addr: s.name, Err: err}
	}
	if s.timeout > 0 {
		if err := port.SetReadTimeout(s.timeout); err != nil {
			port.Close()
			return nil, &Error{Op: "open", Addr: s.name, Err: err}
		}
	}
	return port, nil
}

// release closes port and reports a close failure only if nothing else
// failed first.
func (s *Serial) release(port Port, errp *error) {
	if cerr := port.Close(); cerr != nil && *errp == nil {
		*errp = &Error{Op: "close", Addr: s.name, Err: cerr}
	}
}

func (s *Serial) write(port Port, frame []byte) error {
	for written := 0; written < len(frame); {
		n, err := port.Write(frame[written:])
		if err != nil {
			return &Error{Op: "write", Addr: s.name, Err: err}
		}
		if n == 0 {
			return &Error{Op: "write", Addr: s.name, Err: io.ErrShortWrite}
		}
		written += n
	}
	return nil
}
