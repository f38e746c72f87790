// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hantek

import (
	"errors"
	"fmt"
)

// MalformedResponseError indicates that a query reply could not be parsed.
type MalformedResponseError struct {
	Command Command
	Payload []byte
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if len(e.Payload) == 0 {
		return fmt.Sprintf("%s: malformed response: empty payload", e.Command)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed response %q: %v", e.Command, e.Payload, e.Err)
	}
	return fmt.Sprintf("%s: malformed response %q", e.Command, e.Payload)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsMalformedResponse returns true if err is or wraps a MalformedResponseError.
func IsMalformedResponse(err error) bool {
	var target *MalformedResponseError
	return errors.As(err, &target)
}

// ValueRangeError indicates that a setter value has no 16-bit wire encoding.
// Command is meaningful only when HasCommand is set; the bare conversion
// helpers do not know which setter they serve.
type ValueRangeError struct {
	Command    Command
	HasCommand bool
	Value      float64
	Unit       Unit
}

func (e *ValueRangeError) Error() string {
	msg := fmt.Sprintf("value %g %s out of range: wire value must be %d-%d",
		e.Value, unitSymbol(e.Unit), MinWireValue, MaxWireValue)
	if !e.HasCommand {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Command, msg)
}

// IsValueRange returns true if err is or wraps a ValueRangeError.
func IsValueRange(err error) bool {
	var target *ValueRangeError
	return errors.As(err, &target)
}

// UnknownCommandError is the panic value raised when a command outside the
// table is looked up.
type UnknownCommandError struct {
	Command Command
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("hantek: unknown command %d", uint8(e.Command))
}

func unitSymbol(u Unit) string {
	switch u {
	case UnitCentivolts:
		return "V"
	case UnitMilliamps:
		return "mA"
	default:
		return ""
	}
}
