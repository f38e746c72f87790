// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/hantekpsu/pkg/hantek"
)

var (
	pingCount    int
	pingInterval time.Duration
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the link by asking the PSU for its model",
	Long: `Send GET_MODEL a fixed number of times and report the round trip of each
exchange.

This is useful for verifying:
  - The serial port or WebSocket bridge can be opened
  - HTTP Basic authentication works
  - The PSU answers at the configured baud rate and timeout

A reply that is empty (the read timed out) counts as lost.`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVarP(&pingCount, "count", "c", 3, "Number of pings to send")
	pingCmd.Flags().DurationVar(&pingInterval, "interval", 100*time.Millisecond, "Delay between pings")
}

func runPing(cmd *cobra.Command, args []string) error {
	if pingCount < 1 {
		return fmt.Errorf("count must be at least 1, got %d", pingCount)
	}

	psu, connInfo, err := OpenPSU()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "Timeout: %s per reply\n\n", psu.Config().Timeout)

	stats := hantek.NewStatistics()
	for i := 1; i <= pingCount; i++ {
		fmt.Fprintf(out, "Ping %d/%d: ", i, pingCount)

		start := time.Now()
		model, err := psu.Model()
		rtt := time.Since(start)
		stats.Record(hantek.CmdGetModel, err)

		if err != nil {
			fmt.Fprintf(out, "FAILED: %v\n", err)
		} else {
			fmt.Fprintf(out, "%s, rtt=%v\n", model, rtt.Round(time.Millisecond))
		}

		if i < pingCount {
			time.Sleep(pingInterval)
		}
	}

	// Summary
	fmt.Fprintf(out, "\n--- Ping statistics ---\n")
	fmt.Fprintf(out, "%d pings sent, %d replies received, %.0f%% loss\n",
		stats.TotalCommands, stats.TotalCommands-stats.Failures, 100-stats.SuccessRate())
	log.Debug("Ping finished")

	if stats.Failures > 0 {
		return fmt.Errorf("%d of %d pings failed", stats.Failures, stats.TotalCommands)
	}
	return nil
}
