// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/hantekpsu/pkg/hantek"
)

// setterNames maps `set` arguments to setter commands
var setterNames = map[string]hantek.Command{
	"voltage": hantek.CmdSetOutputVoltage,
	"current": hantek.CmdSetOutputCurrent,
	"ovp":     hantek.CmdSetOVPLimit,
	"ocp":     hantek.CmdSetOCPLimit,
}

var setCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Change a setpoint or protection limit",
	Long: `Change a setpoint or protection limit.

Settings:
  voltage <V>    Output voltage in volts, e.g. 3.3
  current <mA>   Output current limit in milliamps, e.g. 100
  ovp <V>        Over-voltage protection threshold in volts
  ocp <mA>       Over-current protection threshold in milliamps

Voltages are sent in centivolts, truncated: 3.335 is sent as 333.
Values are not checked against the device range.`,
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return sortedKeys(setterNames), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	c, value, err := parseSetter(args[0], args[1])
	if err != nil {
		return err
	}

	psu, _, err := OpenPSU()
	if err != nil {
		return err
	}

	if _, err := psu.Do(c, value); err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", args[0], formatSetting(c, value))
	return nil
}

// parseSetter resolves a setting name and its value argument
func parseSetter(name, arg string) (hantek.Command, float64, error) {
	c, ok := setterNames[name]
	if !ok {
		return 0, 0, fmt.Errorf("unknown setting %q (use voltage, current, ovp or ocp)", name)
	}

	if c.Unit() == hantek.UnitMilliamps {
		mA, err := strconv.Atoi(arg)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid milliamps %q: must be a whole number", arg)
		}
		return c, float64(mA), nil
	}

	volts, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid volts %q", arg)
	}
	return c, volts, nil
}

func formatSetting(c hantek.Command, value float64) string {
	if c.Unit() == hantek.UnitMilliamps {
		return fmt.Sprintf("%d mA", int(value))
	}
	return fmt.Sprintf("%.2f V", value)
}
