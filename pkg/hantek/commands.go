// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hantek

import (
	"fmt"
	"strings"
)

// Command identifies one PSU operation.
type Command uint8

// Supported commands
const (
	CmdTurnOn Command = iota
	CmdTurnOff
	CmdGetModel
	CmdGetActiveVoltage
	CmdGetActiveCurrent
	CmdGetVoltageLimit
	CmdGetCurrentLimit
	CmdGetOnOffStatus
	CmdOCPOn
	CmdOCPOff
	CmdOVPOn
	CmdOVPOff
	CmdSetOutputVoltage
	CmdSetOutputCurrent
	CmdSetOVPLimit
	CmdSetOCPLimit

	commandCount
)

// Kind tells whether a command is fire-and-forget, answered with a line,
// or carries a value.
type Kind uint8

const (
	KindAction Kind = iota
	KindQuery
	KindSetter
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindQuery:
		return "query"
	case KindSetter:
		return "setter"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Unit is the wire unit of a setter value or a query reply.
type Unit uint8

const (
	UnitNone Unit = iota
	UnitCentivolts
	UnitMilliamps
	UnitText
	UnitFlag
)

// Opcode is the fixed byte prefix of a command.
type Opcode []byte

// String renders the opcode as space separated hex bytes.
func (o Opcode) String() string {
	return formatHex(o)
}

type commandInfo struct {
	name   string
	opcode Opcode
	kind   Kind
	unit   Unit
}

// commandTable is indexed by Command and never modified.
var commandTable = [commandCount]commandInfo{
	CmdTurnOn:           {"turn_on", Opcode{HeaderByte, HeaderByte, lenAction, fnOutput, subcodeOn}, KindAction, UnitNone},
	CmdTurnOff:          {"turn_off", Opcode{HeaderByte, HeaderByte, lenAction, fnOutput, subcodeOff}, KindAction, UnitNone},
	CmdGetModel:         {"get_model", Opcode{HeaderByte, HeaderByte, lenQuery, fnModel}, KindQuery, UnitText},
	CmdGetActiveVoltage: {"get_active_voltage", Opcode{HeaderByte, HeaderByte, lenQuery, fnActiveVoltage}, KindQuery, UnitCentivolts},
	CmdGetActiveCurrent: {"get_active_current", Opcode{HeaderByte, HeaderByte, lenQuery, fnActiveCurrent}, KindQuery, UnitMilliamps},
	CmdGetVoltageLimit:  {"get_voltage_limit", Opcode{HeaderByte, HeaderByte, lenQuery, fnVoltageLimit}, KindQuery, UnitCentivolts},
	CmdGetCurrentLimit:  {"get_current_limit", Opcode{HeaderByte, HeaderByte, lenQuery, fnCurrentLimit}, KindQuery, UnitMilliamps},
	CmdGetOnOffStatus:   {"get_on_off_status", Opcode{HeaderByte, HeaderByte, lenQuery, fnOnOffStatus}, KindQuery, UnitFlag},
	CmdOCPOn:            {"ocp_on", Opcode{HeaderByte, HeaderByte, lenAction, fnOCP, subcodeOn}, KindAction, UnitNone},
	CmdOCPOff:           {"ocp_off", Opcode{HeaderByte, HeaderByte, lenAction, fnOCP, subcodeOff}, KindAction, UnitNone},
	CmdOVPOn:            {"ovp_on", Opcode{HeaderByte, HeaderByte, lenAction, fnOVP, subcodeOn}, KindAction, UnitNone},
	CmdOVPOff:           {"ovp_off", Opcode{HeaderByte, HeaderByte, lenAction, fnOVP, subcodeOff}, KindAction, UnitNone},
	CmdSetOutputVoltage: {"set_output_voltage", Opcode{HeaderByte, HeaderByte, lenSetter, fnSetVoltage}, KindSetter, UnitCentivolts},
	CmdSetOutputCurrent: {"set_output_current", Opcode{HeaderByte, HeaderByte, lenSetter, fnSetCurrent}, KindSetter, UnitMilliamps},
	CmdSetOVPLimit:      {"set_ovp_limit", Opcode{HeaderByte, HeaderByte, lenSetter, fnSetOVPLimit}, KindSetter, UnitCentivolts},
	CmdSetOCPLimit:      {"set_ocp_limit", Opcode{HeaderByte, HeaderByte, lenSetter, fnSetOCPLimit}, KindSetter, UnitMilliamps},
}

func info(c Command) commandInfo {
	if c >= commandCount {
		panic(&UnknownCommandError{Command: c})
	}
	return commandTable[c]
}

// Lookup returns a copy of the opcode for c.
// It panics with *UnknownCommandError if c is not a supported command.
func Lookup(c Command) Opcode {
	op := info(c).opcode
	out := make(Opcode, len(op))
	copy(out, op)
	return out
}

// Commands returns every supported command in table order.
func Commands() []Command {
	cmds := make([]Command, 0, commandCount)
	for c := Command(0); c < commandCount; c++ {
		cmds = append(cmds, c)
	}
	return cmds
}

// ParseCommand resolves an operation name such as "set_output_voltage".
// Dashes are accepted in place of underscores and case is ignored.
func ParseCommand(name string) (Command, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for c := Command(0); c < commandCount; c++ {
		if commandTable[c].name == key {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

// String returns the operation name, e.g. "turn_on".
func (c Command) String() string {
	if c >= commandCount {
		return fmt.Sprintf("command(%d)", uint8(c))
	}
	return commandTable[c].name
}

// Kind returns the dispatch kind of c.
func (c Command) Kind() Kind {
	return info(c).kind
}

// Unit returns the wire unit of the value carried or returned by c.
func (c Command) Unit() Unit {
	return info(c).unit
}

// Valid reports whether c is a supported command.
func (c Command) Valid() bool {
	return c < commandCount
}
