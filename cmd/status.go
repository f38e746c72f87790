// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/hantekpsu/pkg/hantek"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query every reading and print a summary",
	Long: `Query the model, output state, setpoints and measured values one after
another and print them as a table. A failed reading is reported inline and
does not stop the remaining queries.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

// statusQueries lists the readings shown by `status`, in display order
var statusQueries = []struct {
	label string
	cmd   hantek.Command
}{
	{"Model", hantek.CmdGetModel},
	{"Output", hantek.CmdGetOnOffStatus},
	{"Voltage", hantek.CmdGetActiveVoltage},
	{"Current", hantek.CmdGetActiveCurrent},
	{"Voltage limit", hantek.CmdGetVoltageLimit},
	{"Current limit", hantek.CmdGetCurrentLimit},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	psu, connInfo, err := OpenPSU()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Connection: %s\n\n", connInfo)

	stats := hantek.NewStatistics()
	for _, q := range statusQueries {
		reading, err := psu.Do(q.cmd, 0)
		stats.Record(q.cmd, err)
		printReading(out, q.label, reading, err)
	}

	if stats.Failures > 0 {
		return fmt.Errorf("%d of %d readings failed", stats.Failures, stats.TotalCommands)
	}
	return nil
}

func printReading(out io.Writer, label string, reading hantek.Reading, err error) {
	if err != nil {
		fmt.Fprintf(out, "%-14s ERROR: %v\n", label+":", err)
		return
	}
	fmt.Fprintf(out, "%-14s %s\n", label+":", reading.String())
}
