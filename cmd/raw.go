// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Thermoquad/hantekpsu/pkg/hantek"
)

var rawNoReply bool

var rawCmd = &cobra.Command{
	Use:   "raw <hex bytes>...",
	Short: "Send raw frame bytes and print the reply",
	Long: `Send an arbitrary frame and display the reply line in human-readable
format. Bytes may be given as separate arguments or run together:

  hantekpsu raw FF FF 02 20
  hantekpsu raw FFFF0209

The frame is decoded against the command table before sending when it
matches a known opcode. Use --no-reply for frames the PSU does not answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRaw,
}

func init() {
	rootCmd.AddCommand(rawCmd)
	rawCmd.Flags().BoolVar(&rawNoReply, "no-reply", false, "Write only, do not wait for a reply line")
}

func runRaw(cmd *cobra.Command, args []string) error {
	frame, err := parseHexFrame(args)
	if err != nil {
		return err
	}

	factory, connInfo, err := transportFactory(settings)
	if err != nil {
		return err
	}
	t := factory(settings.Port, settings.Baud, settings.Timeout)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "TX: %s\n", hantek.FormatFrame(frame))
	log.Debug("Sending raw frame", zap.Binary("frame", frame))

	if rawNoReply {
		return t.Write(frame)
	}

	reply, err := t.WriteReadLine(frame)
	if err != nil {
		return err
	}
	if len(reply) == 0 {
		fmt.Fprintln(out, "RX: (no reply)")
		return nil
	}
	fmt.Fprintf(out, "RX: %q [% X]\n", reply, reply)
	return nil
}

// parseHexFrame joins hex byte arguments into one frame
func parseHexFrame(args []string) ([]byte, error) {
	text := strings.Join(args, "")
	text = strings.NewReplacer(" ", "", ":", "", "0x", "", "0X", "").Replace(text)

	frame, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid hex frame %q: %v", strings.Join(args, " "), err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("empty frame")
	}
	return frame, nil
}
