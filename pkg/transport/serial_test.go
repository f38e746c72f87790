// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// fakePort replays scripted reads; an empty chunk is a read timeout
type fakePort struct {
	written     bytes.Buffer
	reads       [][]byte
	readErr     error
	writeErr    error
	closeErr    error
	drainErr    error
	closed      int
	readTimeout time.Duration
	// steps records the order of write, drain and close calls
	steps []string
}

func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.reads) == 0 {
		if p.readErr != nil {
			return 0, p.readErr
		}
		return 0, nil
	}
	chunk := p.reads[0]
	n := copy(b, chunk)
	if n < len(chunk) {
		p.reads[0] = chunk[n:]
	} else {
		p.reads = p.reads[1:]
	}
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.steps = append(p.steps, "write")
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(b)
}

func (p *fakePort) Drain() error {
	p.steps = append(p.steps, "drain")
	return p.drainErr
}

func (p *fakePort) Close() error {
	p.steps = append(p.steps, "close")
	p.closed++
	return p.closeErr
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.readTimeout = t
	return nil
}

type openRecorder struct {
	port  *fakePort
	err   error
	name  string
	mode  *serial.Mode
	opens int
}

func (o *openRecorder) open(name string, mode *serial.Mode) (Port, error) {
	o.opens++
	o.name = name
	o.mode = mode
	if o.err != nil {
		return nil, o.err
	}
	return o.port, nil
}

func newTestSerial(port *fakePort) (*Serial, *openRecorder) {
	rec := &openRecorder{port: port}
	return NewSerialWithOpener("/dev/ttyUSB0", 2400, 40*time.Millisecond, rec.open), rec
}

func TestSerial_WriteOpensAndCloses(t *testing.T) {
	port := &fakePort{}
	s, rec := newTestSerial(port)

	frame := []byte{0xFF, 0xFF, 0x03, 0x06, 0x01}
	require.NoError(t, s.Write(frame))

	assert.Equal(t, frame, port.written.Bytes())
	assert.Equal(t, 1, rec.opens)
	assert.Equal(t, 1, port.closed)
	assert.Equal(t, "/dev/ttyUSB0", rec.name)
	assert.Equal(t, 2400, rec.mode.BaudRate)
	assert.Equal(t, 8, rec.mode.DataBits)
	assert.Equal(t, serial.NoParity, rec.mode.Parity)
	assert.Equal(t, serial.OneStopBit, rec.mode.StopBits)
	assert.Equal(t, 40*time.Millisecond, port.readTimeout)
}

func TestSerial_WriteReadLine(t *testing.T) {
	tests := []struct {
		name  string
		reads [][]byte
		want  string
	}{
		{"single chunk", [][]byte{[]byte("330\n")}, "330"},
		{"crlf", [][]byte{[]byte("HDP1160V4S\r\n")}, "HDP1160V4S"},
		{"split reply", [][]byte{[]byte("12"), []byte("34\r"), []byte("\n")}, "1234"},
		{"stops at newline", [][]byte{[]byte("1\nextra")}, "1"},
		{"timeout returns partial", [][]byte{[]byte("25")}, "25"},
		{"timeout without data", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := &fakePort{reads: tt.reads}
			s, _ := newTestSerial(port)

			got, err := s.WriteReadLine([]byte{0xFF, 0xFF, 0x02, 0x09})
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, []byte{0xFF, 0xFF, 0x02, 0x09}, port.written.Bytes())
			assert.Equal(t, 1, port.closed)
		})
	}
}

func TestSerial_LineIsBounded(t *testing.T) {
	port := &fakePort{reads: [][]byte{bytes.Repeat([]byte("9"), MaxLineSize+100)}}
	s, _ := newTestSerial(port)

	got, err := s.WriteReadLine([]byte{0xFF, 0xFF, 0x02, 0x20})
	require.NoError(t, err)
	assert.Len(t, got, MaxLineSize)
}

func TestSerial_EOFEndsLine(t *testing.T) {
	port := &fakePort{reads: [][]byte{[]byte("7")}, readErr: io.EOF}
	s, _ := newTestSerial(port)

	got, err := s.WriteReadLine([]byte{0xFF, 0xFF, 0x02, 0x14})
	require.NoError(t, err)
	assert.Equal(t, "7", string(got))
}

func TestSerial_OpenError(t *testing.T) {
	errBusy := errors.New("device busy")
	rec := &openRecorder{err: errBusy}
	s := NewSerialWithOpener("/dev/ttyUSB9", 2400, 0, rec.open)

	err := s.Write([]byte{0xFF})
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, errBusy)

	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "open", terr.Op)
	assert.Equal(t, "/dev/ttyUSB9", terr.Addr)
	assert.Equal(t, "open /dev/ttyUSB9: device busy", terr.Error())
}

func TestSerial_ClosesOnFailure(t *testing.T) {
	t.Run("write error", func(t *testing.T) {
		port := &fakePort{writeErr: errors.New("unplugged")}
		s, _ := newTestSerial(port)

		_, err := s.WriteReadLine([]byte{0xFF, 0xFF, 0x02, 0x09})
		var terr *Error
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, "write", terr.Op)
		assert.Equal(t, 1, port.closed)
	})

	t.Run("read error", func(t *testing.T) {
		port := &fakePort{readErr: errors.New("framing error")}
		s, _ := newTestSerial(port)

		_, err := s.WriteReadLine([]byte{0xFF, 0xFF, 0x02, 0x09})
		var terr *Error
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, "read", terr.Op)
		assert.Equal(t, 1, port.closed)
	})
}

func TestSerial_CloseError(t *testing.T) {
	errClose := errors.New("close failed")

	port := &fakePort{closeErr: errClose}
	s, _ := newTestSerial(port)
	err := s.Write([]byte{0xFF})
	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "close", terr.Op)

	// The first failure wins over the close error
	port = &fakePort{closeErr: errClose, writeErr: errors.New("unplugged")}
	s, _ = newTestSerial(port)
	err = s.Write([]byte{0xFF})
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "write", terr.Op)
}

func TestSerial_EachCallOpensPort(t *testing.T) {
	port := &fakePort{}
	s, rec := newTestSerial(port)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Write([]byte{0xFF, 0xFF, 0x03, 0x06, 0x00}))
	}
	assert.Equal(t, 3, rec.opens)
	assert.Equal(t, 3, port.closed)
	assert.Equal(t, "/dev/ttyUSB0", s.Name())
}

func TestSerial_WriteDrainsBeforeClose(t *testing.T) {
	port := &fakePort{}
	s, _ := newTestSerial(port)

	require.NoError(t, s.Write([]byte{0xFF, 0xFF, 0x03, 0x06, 0x01}))
	assert.Equal(t, []string{"write", "drain", "close"}, port.steps)
}

func TestSerial_DrainError(t *testing.T) {
	port := &fakePort{drainErr: errors.New("tcdrain failed")}
	s, _ := newTestSerial(port)

	err := s.Write([]byte{0xFF, 0xFF, 0x03, 0x06, 0x01})
	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "drain", terr.Op)
	assert.Equal(t, "/dev/ttyUSB0", terr.Addr)
	assert.Equal(t, 1, port.closed)

	// A failed write is not drained
	port = &fakePort{writeErr: errors.New("unplugged")}
	s, _ = newTestSerial(port)
	require.Error(t, s.Write([]byte{0xFF}))
	assert.Equal(t, []string{"write", "close"}, port.steps)
}
