// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hantek

import "time"

// Transport moves frames to and from the PSU.
//
// Each call acquires the underlying connection, uses it and releases it
// before returning; no connection is held between calls.
type Transport interface {
	// Write sends frame.
	Write(frame []byte) error

	// WriteReadLine sends frame and reads one reply line. The line
	// terminator is stripped. If the read times out, whatever arrived so far
	// is returned with a nil error, possibly empty.
	WriteReadLine(frame []byte) ([]byte, error)
}

// TransportFactory builds a Transport for the given connection settings.
type TransportFactory func(port string, baudRate int, timeout time.Duration) Transport
