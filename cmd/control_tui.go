// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/hantekpsu/pkg/hantek"
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// Protection state as last sent; the PSU cannot be asked for it
type protectionState int

const (
	protectionUnknown protectionState = iota
	protectionOn
	protectionOff
)

func (s protectionState) String() string {
	switch s {
	case protectionOn:
		return "on"
	case protectionOff:
		return "off"
	default:
		return "unknown"
	}
}

type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

type queryResult struct {
	reading hantek.Reading
	err     error
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	ctrl     *psuController
	connInfo string

	// Last result per query command
	readings map[hantek.Command]queryResult
	ocp      protectionState
	ovp      protectionState

	// Setpoint entry
	input   textinput.Model
	editing bool
	setter  hantek.Command

	busy  int
	stats *hantek.Statistics

	eventLog      []eventLogEntry
	maxLogEntries int

	width    int
	height   int
	quitting bool
}

// Messages
type refreshMsg struct {
	results []queryResult
}

type commandDoneMsg struct {
	cmd   hantek.Command
	value float64
	err   error
}

// setterKeys maps keys to the setpoint they edit
var setterKeys = map[string]hantek.Command{
	"V": hantek.CmdSetOutputVoltage,
	"A": hantek.CmdSetOutputCurrent,
	"L": hantek.CmdSetOVPLimit,
	"M": hantek.CmdSetOCPLimit,
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(ctrl *psuController, connInfo string) controlModel {
	ti := textinput.New()
	ti.CharLimit = 8
	ti.Width = 10

	return controlModel{
		ctrl:          ctrl,
		connInfo:      connInfo,
		readings:      make(map[hantek.Command]queryResult),
		input:         ti,
		stats:         hantek.NewStatistics(),
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return m.ctrl.refreshCmd()
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.handleEditKey(msg)
		}
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case refreshMsg:
		m.busy--
		if m.busy < 0 {
			m.busy = 0
		}
		failed := 0
		for _, r := range msg.results {
			m.stats.Record(r.reading.Command, r.err)
			m.readings[r.reading.Command] = r
			if r.err != nil {
				failed++
			}
		}
		if failed > 0 {
			m.addLogEntry(fmt.Sprintf("Refresh: %d readings failed", failed), true)
		}

	case commandDoneMsg:
		m.stats.Record(msg.cmd, msg.err)
		if msg.err != nil {
			m.busy--
			m.addLogEntry(fmt.Sprintf("%s failed: %v", hantek.FormatCommandName(msg.cmd), msg.err), true)
			return m, nil
		}
		m.applyProtection(msg.cmd)
		m.addLogEntry(describeCommand(msg.cmd, msg.value), false)
		// The refresh takes over this command's busy slot
		return m, m.ctrl.refreshCmd()
	}

	return m, nil
}

func (m controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "r":
		return m.start(m.ctrl.refreshCmd())

	case "o":
		if m.outputOn() {
			return m.start(m.ctrl.sendCmd(hantek.CmdTurnOff, 0))
		}
		return m.start(m.ctrl.sendCmd(hantek.CmdTurnOn, 0))

	case "c":
		if m.ocp == protectionOn {
			return m.start(m.ctrl.sendCmd(hantek.CmdOCPOff, 0))
		}
		return m.start(m.ctrl.sendCmd(hantek.CmdOCPOn, 0))

	case "p":
		if m.ovp == protectionOn {
			return m.start(m.ctrl.sendCmd(hantek.CmdOVPOff, 0))
		}
		return m.start(m.ctrl.sendCmd(hantek.CmdOVPOn, 0))
	}

	if c, ok := setterKeys[msg.String()]; ok {
		m.editing = true
		m.setter = c
		m.input.Placeholder = setterPlaceholder(c)
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

func (m controlModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.stopEditing()
		return m, nil

	case "enter":
		value, err := parseSetpoint(m.setter, m.input.Value())
		if err != nil {
			m.addLogEntry(err.Error(), true)
			return m, nil
		}
		c := m.setter
		m.stopEditing()
		return m.start(m.ctrl.sendCmd(c, value))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// start marks a command in flight. Keys are still accepted while busy; the
// controller mutex keeps exchanges from overlapping on the link.
func (m controlModel) start(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy++
	return m, cmd
}

func (m *controlModel) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.SetValue("")
}

func (m *controlModel) applyProtection(c hantek.Command) {
	switch c {
	case hantek.CmdOCPOn:
		m.ocp = protectionOn
	case hantek.CmdOCPOff:
		m.ocp = protectionOff
	case hantek.CmdOVPOn:
		m.ovp = protectionOn
	case hantek.CmdOVPOff:
		m.ovp = protectionOff
	}
}

func (m controlModel) outputOn() bool {
	r, ok := m.readings[hantek.CmdGetOnOffStatus]
	return ok && r.err == nil && r.reading.On
}

func (m *controlModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func parseSetpoint(c hantek.Command, text string) (float64, error) {
	text = strings.TrimSpace(text)
	if c.Unit() == hantek.UnitMilliamps {
		mA, err := strconv.Atoi(text)
		if err != nil {
			return 0, fmt.Errorf("invalid milliamps %q", text)
		}
		return float64(mA), nil
	}
	volts, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid volts %q", text)
	}
	return volts, nil
}

func setterPlaceholder(c hantek.Command) string {
	if c.Unit() == hantek.UnitMilliamps {
		return "mA"
	}
	return "V"
}

func describeCommand(c hantek.Command, value float64) string {
	switch c {
	case hantek.CmdTurnOn:
		return "Output enabled"
	case hantek.CmdTurnOff:
		return "Output disabled"
	case hantek.CmdOCPOn:
		return "Over-current protection enabled"
	case hantek.CmdOCPOff:
		return "Over-current protection disabled"
	case hantek.CmdOVPOn:
		return "Over-voltage protection enabled"
	case hantek.CmdOVPOff:
		return "Over-voltage protection disabled"
	}
	return fmt.Sprintf("%s set to %s", hantek.FormatCommandName(c), formatSetting(c, value))
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	s.WriteString(titleStyle.Render("HANTEK PSU CONTROL"))
	s.WriteString(" ")
	status := m.connInfo
	if m.busy > 0 {
		status = warningStyle.Render("BUSY") + " " + status
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s", status)))
	s.WriteString("\n\n")

	// Readings and protection side by side
	panelWidth := (m.width - 6) / 2
	if panelWidth < 30 {
		panelWidth = 30
	}
	readings := boxStyle.Width(panelWidth).Render(m.renderReadings(labelStyle, valueStyle, errorStyle))
	protection := boxStyle.Width(panelWidth).Render(m.renderProtection(labelStyle, valueStyle, warningStyle))
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, readings, " ", protection))
	s.WriteString("\n")

	if m.editing {
		s.WriteString(boxStyle.Width(m.width - 4).Render(
			labelStyle.Render(fmt.Sprintf("%s:", hantek.FormatCommandName(m.setter))) + " " + m.input.View() +
				headerStyle.Render("  (enter to send, esc to cancel)")))
		s.WriteString("\n")
	}

	s.WriteString(m.renderStatisticsBar(labelStyle, valueStyle, errorStyle, boxStyle))
	s.WriteString("\n")
	s.WriteString(m.renderEventLog(labelStyle, errorStyle, boxStyle))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render("o: output  c: OCP  p: OVP  V: volts  A: amps  L: OVP limit  M: OCP limit  r: refresh  q: quit"))
	s.WriteString("\n")

	return s.String()
}

func (m controlModel) renderReadings(labelStyle, valueStyle, errorStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("READINGS"))
	s.WriteString("\n")

	for _, q := range statusQueries {
		s.WriteString(fmt.Sprintf("%-14s ", q.label+":"))
		r, ok := m.readings[q.cmd]
		switch {
		case !ok:
			s.WriteString("-")
		case r.err != nil:
			s.WriteString(errorStyle.Render("error"))
		default:
			s.WriteString(valueStyle.Render(r.reading.String()))
		}
		s.WriteString("\n")
	}
	return strings.TrimSuffix(s.String(), "\n")
}

func (m controlModel) renderProtection(labelStyle, valueStyle, warningStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("PROTECTION (last sent)"))
	s.WriteString("\n")

	render := func(state protectionState) string {
		if state == protectionUnknown {
			return warningStyle.Render(state.String())
		}
		return valueStyle.Render(state.String())
	}
	s.WriteString(fmt.Sprintf("%-14s %s\n", "OCP:", render(m.ocp)))
	s.WriteString(fmt.Sprintf("%-14s %s", "OVP:", render(m.ovp)))
	return s.String()
}

func (m controlModel) renderStatisticsBar(labelStyle, valueStyle, errorStyle, boxStyle lipgloss.Style) string {
	failures := valueStyle.Render("0")
	if m.stats.Failures > 0 {
		failures = errorStyle.Render(fmt.Sprintf("%d", m.stats.Failures))
	}

	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		labelStyle.Render("Commands:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.TotalCommands)),
		labelStyle.Render("Queries:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.Queries)),
		labelStyle.Render("Failures:"), failures,
		labelStyle.Render("Success:"), valueStyle.Render(fmt.Sprintf("%.1f%%", m.stats.SuccessRate())),
	)
	return boxStyle.Width(m.width - 4).Render(content)
}

func (m controlModel) renderEventLog(labelStyle, errorStyle, boxStyle lipgloss.Style) string {
	var content strings.Builder
	content.WriteString(labelStyle.Render("EVENT LOG"))
	content.WriteString("\n")

	// Show as many entries as fit below the panels
	maxLines := m.height - 20
	if maxLines < 3 {
		maxLines = 3
	}

	start := 0
	if len(m.eventLog) > maxLines {
		start = len(m.eventLog) - maxLines
	}

	if len(m.eventLog) == 0 {
		content.WriteString("No events")
	}
	for i, entry := range m.eventLog[start:] {
		line := fmt.Sprintf("[%s] %s", entry.timestamp.Format("15:04:05"), entry.message)
		if entry.isError {
			line = errorStyle.Render(line)
		}
		content.WriteString(line)
		if i < len(m.eventLog[start:])-1 {
			content.WriteString("\n")
		}
	}

	return boxStyle.Width(m.width - 4).Render(content.String())
}
