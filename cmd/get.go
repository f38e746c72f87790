// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/hantekpsu/pkg/hantek"
)

// queryNames maps `get` arguments to query commands
var queryNames = map[string]hantek.Command{
	"model":         hantek.CmdGetModel,
	"voltage":       hantek.CmdGetActiveVoltage,
	"current":       hantek.CmdGetActiveCurrent,
	"voltage-limit": hantek.CmdGetVoltageLimit,
	"current-limit": hantek.CmdGetCurrentLimit,
	"status":        hantek.CmdGetOnOffStatus,
}

var getRaw bool

var getCmd = &cobra.Command{
	Use:   "get <reading>",
	Short: "Query a reading from the PSU",
	Long: `Query one reading from the PSU.

Readings:
  model          Model string, e.g. HDP1160V4S
  voltage        Measured output voltage (V)
  current        Measured output current (mA)
  voltage-limit  Voltage setpoint (V)
  current-limit  Current setpoint (mA)
  status         Output on/off`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: sortedKeys(queryNames),
	RunE:      runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVar(&getRaw, "raw", false, "Print the raw reply line instead of the decoded value")
}

func runGet(cmd *cobra.Command, args []string) error {
	c := queryNames[args[0]]

	psu, _, err := OpenPSU()
	if err != nil {
		return err
	}

	reading, err := psu.Do(c, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}

	if getRaw {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", reading.Raw)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), reading.String())
	return nil
}

func sortedKeys(m map[string]hantek.Command) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
