// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package transport provides the links a Hantek PSU can be reached over:
// a local serial port, or a serial-to-WebSocket bridge.
//
// Every exchange opens its own connection and closes it before returning.
package transport

import "bytes"

// MaxLineSize bounds a reply line. Longer replies are cut at this size.
const MaxLineSize = 256

const readChunkSize = 64

// lineBuffer accumulates reply bytes until a line terminator.
type lineBuffer struct {
	buf []byte
	max int
}

func newLineBuffer(max int) *lineBuffer {
	if max <= 0 {
		max = MaxLineSize
	}
	return &lineBuffer{buf: make([]byte, 0, readChunkSize), max: max}
}

// add appends data and reports whether the line is complete.
func (l *lineBuffer) add(data []byte) bool {
	l.buf = append(l.buf, data...)
	if bytes.IndexByte(l.buf, '\n') >= 0 {
		return true
	}
	return len(l.buf) >= l.max
}

// line returns the bytes before the terminator, without a trailing '\r'.
func (l *lineBuffer) line() []byte {
	out := l.buf
	if i := bytes.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	if len(out) > l.max {
		out = out[:l.max]
	}
	return bytes.TrimSuffix(out, []byte{'\r'})
}
