// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/hantekpsu/pkg/hantek"
)

// runCLI executes the root command against a fresh simulator
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	getRaw = false
	encodeList = false
	rawNoReply = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--simulate"}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func freshSimulator(t *testing.T) {
	t.Helper()
	simulator = nil
	t.Cleanup(func() { simulator = nil })
}

func TestEncodeOperation(t *testing.T) {
	tests := []struct {
		args    []string
		want    []byte
		wantErr bool
	}{
		{[]string{"turn_on"}, []byte{0xFF, 0xFF, 0x03, 0x06, 0x01}, false},
		{[]string{"get-model"}, []byte{0xFF, 0xFF, 0x02, 0x20}, false},
		{[]string{"set_output_voltage", "3.3"}, []byte{0xFF, 0xFF, 0x04, 0x07, 0x4A, 0x01}, false},
		{[]string{"set_ocp_limit", "250"}, []byte{0xFF, 0xFF, 0x04, 0x18, 0xFA, 0x00}, false},
		{[]string{"turn_on", "1"}, nil, true},
		{[]string{"set_output_voltage"}, nil, true},
		{[]string{"set_output_voltage", "abc"}, nil, true},
		{[]string{"set_output_voltage", "1000"}, nil, true},
		{[]string{"selfdestruct"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			got, err := encodeOperation(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSetter(t *testing.T) {
	c, value, err := parseSetter("voltage", "12.5")
	require.NoError(t, err)
	assert.Equal(t, hantek.CmdSetOutputVoltage, c)
	assert.Equal(t, 12.5, value)

	c, value, err = parseSetter("ocp", "300")
	require.NoError(t, err)
	assert.Equal(t, hantek.CmdSetOCPLimit, c)
	assert.Equal(t, 300.0, value)

	_, _, err = parseSetter("current", "1.5")
	assert.Error(t, err, "milliamps must be whole")

	_, _, err = parseSetter("power", "10")
	assert.Error(t, err)
}

func TestFormatSetting(t *testing.T) {
	assert.Equal(t, "3.30 V", formatSetting(hantek.CmdSetOutputVoltage, 3.3))
	assert.Equal(t, "250 mA", formatSetting(hantek.CmdSetOutputCurrent, 250))
}

func TestCLI_SetAndGet(t *testing.T) {
	freshSimulator(t)

	out, err := runCLI(t, "set", "voltage", "3.3")
	require.NoError(t, err)
	assert.Equal(t, "voltage set to 3.30 V\n", out)

	out, err = runCLI(t, "on")
	require.NoError(t, err)
	assert.Equal(t, "Output enabled\n", out)

	out, err = runCLI(t, "get", "voltage")
	require.NoError(t, err)
	assert.Equal(t, "3.30 V\n", out)

	out, err = runCLI(t, "get", "status", "--raw")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	state := simulator.State()
	assert.True(t, state.Output)
	assert.Equal(t, uint16(330), state.VoltageSetpoint)
}

func TestCLI_Protection(t *testing.T) {
	freshSimulator(t)

	_, err := runCLI(t, "ocp", "on")
	require.NoError(t, err)
	_, err = runCLI(t, "ovp", "on")
	require.NoError(t, err)
	_, err = runCLI(t, "ovp", "off")
	require.NoError(t, err)

	state := simulator.State()
	assert.True(t, state.OCP)
	assert.False(t, state.OVP)

	_, err = runCLI(t, "ocp", "maybe")
	assert.Error(t, err)
}

func TestCLI_Status(t *testing.T) {
	freshSimulator(t)

	out, err := runCLI(t, "status")
	require.NoError(t, err)

	assert.Contains(t, out, "Connection: Simulator")
	assert.Contains(t, out, "HDP1160V4S")
	assert.Contains(t, out, "Output:        off")
	assert.Contains(t, out, "Voltage limit: 5.00 V")
	assert.Contains(t, out, "Current limit: 1000 mA")
}

func TestCLI_StatusReportsFailures(t *testing.T) {
	freshSimulator(t)
	sharedSimulator().SetResponse(hantek.CmdGetActiveVoltage, []byte("??"))

	out, err := runCLI(t, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 6 readings failed")
	assert.Contains(t, out, "Voltage:       ERROR")
	assert.Contains(t, out, "Current limit: 1000 mA")
}

func TestCLI_Encode(t *testing.T) {
	freshSimulator(t)

	out, err := runCLI(t, "encode", "set_output_voltage", "3.3")
	require.NoError(t, err)
	assert.Equal(t, "SET_OUTPUT_VOLTAGE [FF FF 04 07 4A 01] value=330 (3.30 V)\n", out)
	assert.Empty(t, sharedSimulator().Frames(), "encode must not send")

	out, err = runCLI(t, "encode", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "turn_on")
	assert.Contains(t, out, "FF FF 04 18")
}

func TestCLI_RangeError(t *testing.T) {
	freshSimulator(t)

	_, err := runCLI(t, "set", "current", "70000")
	require.Error(t, err)
	assert.True(t, hantek.IsValueRange(err))
	assert.Empty(t, sharedSimulator().Frames())
}

func TestParseHexFrame(t *testing.T) {
	frame, err := parseHexFrame([]string{"FF", "ff", "02", "20"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0x02, 0x20}, frame)

	frame, err = parseHexFrame([]string{"0xFFFF0209"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0x02, 0x09}, frame)

	_, err = parseHexFrame([]string{"F"})
	assert.Error(t, err)
	_, err = parseHexFrame([]string{"zz"})
	assert.Error(t, err)
}

func TestCLI_Raw(t *testing.T) {
	freshSimulator(t)

	out, err := runCLI(t, "raw", "FF", "FF", "02", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "TX: GET_MODEL [FF FF 02 20]")
	assert.Contains(t, out, `RX: "HDP1160V4S"`)

	out, err = runCLI(t, "raw", "--no-reply", "FFFF030601")
	require.NoError(t, err)
	assert.Contains(t, out, "TX: TURN_ON [FF FF 03 06 01]")
	assert.True(t, sharedSimulator().State().Output)
}

func TestCLI_Ping(t *testing.T) {
	freshSimulator(t)

	out, err := runCLI(t, "ping", "--count", "2", "--interval", "1ms")
	require.NoError(t, err)
	assert.Contains(t, out, "Ping 2/2: HDP1160V4S")
	assert.Contains(t, out, "2 pings sent, 2 replies received, 0% loss")

	sharedSimulator().SetResponse(hantek.CmdGetModel, nil)
	out, err = runCLI(t, "ping", "--count", "1")
	require.Error(t, err)
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "100% loss")
}
