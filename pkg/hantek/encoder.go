// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hantek

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// EncodeCommand returns the frame for a command without a value.
func EncodeCommand(c Command) []byte {
	return Lookup(c)
}

// EncodeCommandWithValue returns the opcode of c followed by value as
// two little-endian bytes.
func EncodeCommandWithValue(c Command, value uint16) []byte {
	op := info(c).opcode
	frame := make([]byte, len(op), len(op)+ValueSize)
	copy(frame, op)
	return binary.LittleEndian.AppendUint16(frame, value)
}

// VoltsToWire converts volts to centivolts, truncating toward zero
// (3.335 V encodes as 333).
func VoltsToWire(volts float64) (uint16, error) {
	scaled := math.Trunc(volts * centivoltsPerVolt)
	if math.IsNaN(scaled) || scaled < MinWireValue || scaled > MaxWireValue {
		return 0, &ValueRangeError{Value: volts, Unit: UnitCentivolts}
	}
	return uint16(scaled), nil
}

// MilliampsToWire passes milliamps through after a range check.
func MilliampsToWire(milliamps int) (uint16, error) {
	if milliamps < MinWireValue || milliamps > MaxWireValue {
		return 0, &ValueRangeError{Value: float64(milliamps), Unit: UnitMilliamps}
	}
	return uint16(milliamps), nil
}

// WireToVolts converts a centivolt reading to volts.
func WireToVolts(centivolts int) float64 {
	return float64(centivolts) / centivoltsPerVolt
}

// EncodeSetter scales value according to the unit of setter c and returns
// the complete frame. Voltages are given in volts, currents in milliamps.
func EncodeSetter(c Command, value float64) ([]byte, error) {
	ci := info(c)
	if ci.kind != KindSetter {
		return nil, fmt.Errorf("%s does not take a value", c)
	}

	var wire uint16
	var err error
	switch ci.unit {
	case UnitCentivolts:
		wire, err = VoltsToWire(value)
	default:
		if value != math.Trunc(value) {
			return nil, fmt.Errorf("%s: milliamps must be a whole number, got %g", c, value)
		}
		wire, err = milliampsFloatToWire(value)
	}
	if err != nil {
		var rerr *ValueRangeError
		if errors.As(err, &rerr) {
			rerr.Command = c
			rerr.HasCommand = true
		}
		return nil, err
	}
	return EncodeCommandWithValue(c, wire), nil
}

func milliampsFloatToWire(milliamps float64) (uint16, error) {
	if milliamps < MinWireValue || milliamps > MaxWireValue {
		return 0, &ValueRangeError{Value: milliamps, Unit: UnitMilliamps}
	}
	return uint16(milliamps), nil
}
