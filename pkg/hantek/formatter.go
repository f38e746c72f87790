// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hantek

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// FormatFrame formats a frame into a human-readable string, e.g.
//
//	SET_OUTPUT_VOLTAGE [FF FF 04 07 4A 01] value=330 (3.30 V)
func FormatFrame(frame []byte) string {
	c, value, err := ParseFrame(frame)
	if err != nil {
		return fmt.Sprintf("UNKNOWN [%s]", formatHex(frame))
	}

	result := fmt.Sprintf("%s [%s]", FormatCommandName(c), formatHex(frame))
	if value != nil {
		result += " " + FormatValue(c, *value)
	}
	return result
}

// FormatCommandName returns the upper-case name of a command.
func FormatCommandName(c Command) string {
	return strings.ToUpper(c.String())
}

// FormatValue renders a wire value with its unit.
func FormatValue(c Command, wire uint16) string {
	switch c.Unit() {
	case UnitCentivolts:
		return fmt.Sprintf("value=%d (%.2f V)", wire, WireToVolts(int(wire)))
	case UnitMilliamps:
		return fmt.Sprintf("value=%d (%d mA)", wire, wire)
	default:
		return fmt.Sprintf("value=%d", wire)
	}
}

// ParseFrame resolves a frame back to its command through the table. For
// setters the decoded value is returned as well; other commands must match
// their opcode exactly.
func ParseFrame(frame []byte) (Command, *uint16, error) {
	for c := Command(0); c < commandCount; c++ {
		ci := commandTable[c]
		if !bytes.HasPrefix(frame, ci.opcode) {
			continue
		}

		rest := frame[len(ci.opcode):]
		if ci.kind != KindSetter {
			if len(rest) != 0 {
				return c, nil, fmt.Errorf("%s: unexpected %d trailing bytes", c, len(rest))
			}
			return c, nil, nil
		}

		if len(rest) != ValueSize {
			return c, nil, fmt.Errorf("%s: expected %d value bytes, got %d", c, ValueSize, len(rest))
		}
		value := binary.LittleEndian.Uint16(rest)
		return c, &value, nil
	}

	return 0, nil, fmt.Errorf("no command matches frame [%s]", formatHex(frame))
}

func formatHex(data []byte) string {
	var s strings.Builder
	for i, b := range data {
		if i > 0 {
			s.WriteByte(' ')
		}
		fmt.Fprintf(&s, "%02X", b)
	}
	return s.String()
}
