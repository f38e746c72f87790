// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/hantekpsu/pkg/hantek"
)

var encodeList bool

var encodeCmd = &cobra.Command{
	Use:   "encode <operation> [value]",
	Short: "Print the frame for an operation without sending it",
	Long: `Print the exact bytes an operation puts on the wire. Nothing is opened
or sent.

Operations use the protocol names (turn_on, get_active_voltage,
set_output_voltage, ...). Setters take a value in volts or milliamps.

Examples:
  hantekpsu encode turn_on
  hantekpsu encode set_output_voltage 3.3
  hantekpsu encode --list`,
	Args: func(cmd *cobra.Command, args []string) error {
		if encodeList {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.RangeArgs(1, 2)(cmd, args)
	},
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().BoolVar(&encodeList, "list", false, "List every operation with its opcode")
}

func runEncode(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if encodeList {
		for _, c := range hantek.Commands() {
			fmt.Fprintf(out, "%-20s %-7s %s\n", c, c.Kind(), hantek.Lookup(c))
		}
		return nil
	}

	frame, err := encodeOperation(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hantek.FormatFrame(frame))
	return nil
}

func encodeOperation(args []string) ([]byte, error) {
	c, err := hantek.ParseCommand(args[0])
	if err != nil {
		return nil, err
	}

	if c.Kind() != hantek.KindSetter {
		if len(args) > 1 {
			return nil, fmt.Errorf("%s does not take a value", c)
		}
		return hantek.EncodeCommand(c), nil
	}

	if len(args) < 2 {
		return nil, fmt.Errorf("%s requires a value", c)
	}
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid value %q", args[1])
	}
	return hantek.EncodeSetter(c, value)
}
