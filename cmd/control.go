// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/hantekpsu/pkg/hantek"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for controlling the PSU",
	Long: `Control the PSU via an interactive terminal UI.

Features:
  - Model, output state, setpoints and measured values
  - Output on/off, OCP and OVP toggles
  - Voltage, current and protection limit entry
  - Command statistics and event log

Readings are refreshed after every command and on demand with 'r'; the
PSU is never polled in the background.

Supports serial, WebSocket and simulated connections.`,
	Args: cobra.NoArgs,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

// psuController serializes commands issued from the TUI. Bubble Tea runs
// commands on their own goroutines and the PSU handle is single-request.
type psuController struct {
	psu *hantek.PSU
	mu  sync.Mutex
}

func (pc *psuController) do(c hantek.Command, value float64) (hantek.Reading, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.psu.Do(c, value)
}

// refreshCmd queries every reading in one batch
func (pc *psuController) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		results := make([]queryResult, 0, len(statusQueries))
		for _, q := range statusQueries {
			reading, err := pc.do(q.cmd, 0)
			results = append(results, queryResult{reading: reading, err: err})
		}
		return refreshMsg{results: results}
	}
}

// sendCmd runs an action or setter and reports the outcome
func (pc *psuController) sendCmd(c hantek.Command, value float64) tea.Cmd {
	return func() tea.Msg {
		_, err := pc.do(c, value)
		return commandDoneMsg{cmd: c, value: value, err: err}
	}
}

func runControl(cmd *cobra.Command, args []string) error {
	psu, connInfo, err := OpenPSU()
	if err != nil {
		return err
	}

	pc := &psuController{psu: psu}
	m := initialControlModel(pc, connInfo)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
