// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hantek implements the serial command protocol of Hantek HDP-series
// bench power supplies.
//
// Every operation is a fixed opcode, optionally followed by a 16-bit
// little-endian value. Queries are answered with a single ASCII line holding
// either the model string or a decimal integer. Voltages travel as
// centivolts, currents as milliamps.
package hantek

import "time"

// Frame layout
const (
	HeaderByte = 0xFF
	HeaderSize = 2
	ValueSize  = 2

	// Length bytes following the header
	lenQuery  = 0x02
	lenAction = 0x03
	lenSetter = 0x04
)

// Function codes
const (
	fnOutput        = 0x06
	fnSetVoltage    = 0x07
	fnSetCurrent    = 0x08
	fnActiveVoltage = 0x09
	fnActiveCurrent = 0x0A
	fnVoltageLimit  = 0x12
	fnCurrentLimit  = 0x13
	fnOnOffStatus   = 0x14
	fnSetOVPLimit   = 0x17
	fnSetOCPLimit   = 0x18
	fnOVP           = 0x19
	fnOCP           = 0x1A
	fnModel         = 0x20

	subcodeOff = 0x00
	subcodeOn  = 0x01
)

// Scaling between volts and the centivolt wire unit
const centivoltsPerVolt = 100

// Wire value range
const (
	MinWireValue = 0
	MaxWireValue = 0xFFFF
)

// Connection defaults
const (
	DefaultPort     = "/dev/ttyUSB0"
	DefaultBaudRate = 2400
	DefaultTimeout  = 40 * time.Millisecond
)
