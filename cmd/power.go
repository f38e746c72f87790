// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/hantekpsu/pkg/hantek"
)

var onCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable the output",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, hantek.CmdTurnOn, "Output enabled")
	},
}

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable the output",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, hantek.CmdTurnOff, "Output disabled")
	},
}

var ocpCmd = &cobra.Command{
	Use:       "ocp on|off",
	Short:     "Enable or disable over-current protection",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "on" {
			return runAction(cmd, hantek.CmdOCPOn, "Over-current protection enabled")
		}
		return runAction(cmd, hantek.CmdOCPOff, "Over-current protection disabled")
	},
}

var ovpCmd = &cobra.Command{
	Use:       "ovp on|off",
	Short:     "Enable or disable over-voltage protection",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "on" {
			return runAction(cmd, hantek.CmdOVPOn, "Over-voltage protection enabled")
		}
		return runAction(cmd, hantek.CmdOVPOff, "Over-voltage protection disabled")
	},
}

func init() {
	rootCmd.AddCommand(onCmd, offCmd, ocpCmd, ovpCmd)
}

func runAction(cmd *cobra.Command, c hantek.Command, done string) error {
	psu, _, err := OpenPSU()
	if err != nil {
		return err
	}

	if _, err := psu.Do(c, 0); err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}
