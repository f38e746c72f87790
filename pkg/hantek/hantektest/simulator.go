// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hantektest provides an in-memory power supply that speaks the
// Hantek serial protocol, for tests and dry runs without hardware.
package hantektest

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Thermoquad/hantekpsu/pkg/hantek"
)

// DefaultModel is the model string reported by a new Simulator.
const DefaultModel = "HDP1160V4S"

// State is the simulated device state.
type State struct {
	Model           string
	Output          bool
	OCP             bool
	OVP             bool
	VoltageSetpoint uint16 // centivolts
	CurrentSetpoint uint16 // milliamps
	OVPLimit        uint16 // centivolts
	OCPLimit        uint16 // milliamps
	LoadMilliamps   uint16 // current drawn while the output is on
}

// Simulator implements hantek.Transport against a simulated device.
// It is safe for concurrent use.
type Simulator struct {
	mu          sync.Mutex
	state       State
	frames      [][]byte
	connections int
	responses   map[hantek.Command][]byte
	nextErr     error
}

// NewSimulator creates a simulator with the output off and a 5 V / 1 A
// setpoint.
func NewSimulator() *Simulator {
	return &Simulator{
		state: State{
			Model:           DefaultModel,
			VoltageSetpoint: 500,
			CurrentSetpoint: 1000,
			OVPLimit:        3300,
			OCPLimit:        5000,
			LoadMilliamps:   250,
		},
		responses: make(map[hantek.Command][]byte),
	}
}

// Factory returns a hantek.TransportFactory that always yields s.
func (s *Simulator) Factory() hantek.TransportFactory {
	return func(string, int, time.Duration) hantek.Transport {
		return s
	}
}

// Write applies an action or setter frame.
func (s *Simulator) Write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(frame); err != nil {
		return err
	}
	_, err := s.apply(frame)
	return err
}

// WriteReadLine applies frame and returns the reply line of a query.
// Non-query frames produce an empty reply, as a real device stays silent.
func (s *Simulator) WriteReadLine(frame []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(frame); err != nil {
		return nil, err
	}
	return s.apply(frame)
}

// begin records a scoped exchange and consumes an injected error.
func (s *Simulator) begin(frame []byte) error {
	s.connections++
	if s.nextErr != nil {
		err := s.nextErr
		s.nextErr = nil
		return err
	}
	s.frames = append(s.frames, append([]byte(nil), frame...))
	return nil
}

func (s *Simulator) apply(frame []byte) ([]byte, error) {
	c, value, err := hantek.ParseFrame(frame)
	if err != nil {
		// Unknown frames are ignored by the device
		return nil, nil
	}

	if reply, ok := s.responses[c]; ok {
		delete(s.responses, c)
		return reply, nil
	}

	switch c {
	case hantek.CmdTurnOn:
		s.state.Output = true
	case hantek.CmdTurnOff:
		s.state.Output = false
	case hantek.CmdOCPOn:
		s.state.OCP = true
	case hantek.CmdOCPOff:
		s.state.OCP = false
	case hantek.CmdOVPOn:
		s.state.OVP = true
	case hantek.CmdOVPOff:
		s.state.OVP = false
	case hantek.CmdSetOutputVoltage:
		s.state.VoltageSetpoint = *value
	case hantek.CmdSetOutputCurrent:
		s.state.CurrentSetpoint = *value
	case hantek.CmdSetOVPLimit:
		s.state.OVPLimit = *value
	case hantek.CmdSetOCPLimit:
		s.state.OCPLimit = *value
	case hantek.CmdGetModel:
		return []byte(s.state.Model), nil
	case hantek.CmdGetActiveVoltage:
		if !s.state.Output {
			return itoa(0), nil
		}
		return itoa(int(s.state.VoltageSetpoint)), nil
	case hantek.CmdGetActiveCurrent:
		if !s.state.Output {
			return itoa(0), nil
		}
		return itoa(int(min(s.state.LoadMilliamps, s.state.CurrentSetpoint))), nil
	case hantek.CmdGetVoltageLimit:
		return itoa(int(s.state.VoltageSetpoint)), nil
	case hantek.CmdGetCurrentLimit:
		return itoa(int(s.state.CurrentSetpoint)), nil
	case hantek.CmdGetOnOffStatus:
		if s.state.Output {
			return itoa(1), nil
		}
		return itoa(0), nil
	default:
		return nil, fmt.Errorf("simulator: unhandled command %s", c)
	}
	return nil, nil
}

// SetResponse scripts the raw reply of the next exchange for c. The reply
// replaces the simulated one once.
func (s *Simulator) SetResponse(c hantek.Command, reply []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[c] = reply
}

// FailNext makes the next exchange return err without touching the state.
func (s *Simulator) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextErr = err
}

// State returns a snapshot of the simulated device.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState replaces the simulated device state.
func (s *Simulator) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Frames returns copies of every frame written so far.
func (s *Simulator) Frames() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.frames))
	for i, f := range s.frames {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// LastFrame returns the most recent frame, or nil.
func (s *Simulator) LastFrame() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil
	}
	return append([]byte(nil), s.frames[len(s.frames)-1]...)
}

// Connections returns the number of exchanges started, including failed ones.
func (s *Simulator) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connections
}

func itoa(n int) []byte {
	return []byte(strconv.Itoa(n))
}
