// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hantek

import (
	"fmt"
	"time"
)

// Statistics tracks command outcomes for a session
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalCommands      uint64
	Actions            uint64
	Queries            uint64
	Setters            uint64
	Failures           uint64
	TransportErrors    uint64
	MalformedResponses uint64
	RangeErrors        uint64

	LastError error
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Record counts one command and its outcome. Errors that are neither
// malformed replies nor range errors are counted as transport errors.
func (s *Statistics) Record(c Command, err error) {
	s.TotalCommands++
	s.LastUpdateTime = time.Now()

	switch c.Kind() {
	case KindAction:
		s.Actions++
	case KindQuery:
		s.Queries++
	case KindSetter:
		s.Setters++
	}

	if err == nil {
		return
	}

	s.Failures++
	s.LastError = err
	switch {
	case IsMalformedResponse(err):
		s.MalformedResponses++
	case IsValueRange(err):
		s.RangeErrors++
	default:
		s.TransportErrors++
	}
}

// SuccessRate returns the percentage of commands that completed
func (s *Statistics) SuccessRate() float64 {
	if s.TotalCommands == 0 {
		return 100
	}
	return float64(s.TotalCommands-s.Failures) / float64(s.TotalCommands) * 100
}

// Reset clears all counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}

// Summary returns a one-line summary of the counters
func (s *Statistics) Summary() string {
	return fmt.Sprintf("commands=%d actions=%d queries=%d setters=%d failures=%d (transport=%d malformed=%d range=%d) success=%.1f%%",
		s.TotalCommands, s.Actions, s.Queries, s.Setters, s.Failures,
		s.TransportErrors, s.MalformedResponses, s.RangeErrors, s.SuccessRate())
}
