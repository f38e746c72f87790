// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"errors"
	"fmt"
)

// Error reports a failure to open, write or read the underlying link.
type Error struct {
	// Op is the failed step: "open", "write", "drain", "read",
	// "close" or "dial"
	Op string

	// Addr is the serial device or WebSocket URL
	Addr string

	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTransportError returns true if err is or wraps an *Error.
func IsTransportError(err error) bool {
	var target *Error
	return errors.As(err, &target)
}
