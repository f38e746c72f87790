// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hantek

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"testing"
)

func TestDecodeVolts(t *testing.T) {
	tests := []struct {
		payload string
		want    float64
	}{
		{"330", 3.3},
		{"0", 0},
		{"1550", 15.5},
		{" 500\r", 5.0},
	}

	for _, tt := range tests {
		got, err := DecodeVolts(CmdGetActiveVoltage, []byte(tt.payload))
		if err != nil {
			t.Errorf("DecodeVolts(%q) error = %v", tt.payload, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("DecodeVolts(%q) = %g, want %g", tt.payload, got, tt.want)
		}
	}
}

func TestDecodeMilliamps(t *testing.T) {
	got, err := DecodeMilliamps(CmdGetActiveCurrent, []byte("250"))
	if err != nil {
		t.Fatalf("DecodeMilliamps() error = %v", err)
	}
	if got != 250 {
		t.Errorf("DecodeMilliamps() = %d, want 250", got)
	}
}

func TestDecodeStatus(t *testing.T) {
	tests := []struct {
		payload string
		want    bool
	}{
		{"1", true},
		{"0", false},
		{"2", true},
	}

	for _, tt := range tests {
		got, err := DecodeStatus([]byte(tt.payload))
		if err != nil {
			t.Errorf("DecodeStatus(%q) error = %v", tt.payload, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DecodeStatus(%q) = %v, want %v", tt.payload, got, tt.want)
		}
	}
}

func TestDecodeModel(t *testing.T) {
	got, err := DecodeModel([]byte("HDP1160V4S"))
	if err != nil || got != "HDP1160V4S" {
		t.Errorf("DecodeModel() = %q, %v", got, err)
	}

	if _, err := DecodeModel(nil); !IsMalformedResponse(err) {
		t.Errorf("DecodeModel(nil) error = %v, want *MalformedResponseError", err)
	}
}

func TestDecodeModel_InvalidUTF8(t *testing.T) {
	payload := []byte{0xFF, 0xFE, 'H', 'D', 'P'}

	got, err := DecodeModel(payload)
	if !IsMalformedResponse(err) {
		t.Fatalf("DecodeModel() = %q, %v, want *MalformedResponseError", got, err)
	}
	merr := err.(*MalformedResponseError)
	if merr.Command != CmdGetModel {
		t.Errorf("Command = %s, want %s", merr.Command, CmdGetModel)
	}
	if !bytes.Equal(merr.Payload, payload) {
		t.Errorf("Payload = % X, want % X", merr.Payload, payload)
	}
	if got != "" {
		t.Errorf("model = %q, want empty", got)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"whitespace", []byte(" \r")},
		{"text", []byte("abc")},
		{"decimal point", []byte("3.30")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeVolts(CmdGetVoltageLimit, tt.payload)
			var merr *MalformedResponseError
			if !errors.As(err, &merr) {
				t.Fatalf("DecodeVolts() error = %v, want *MalformedResponseError", err)
			}
			if merr.Command != CmdGetVoltageLimit {
				t.Errorf("Command = %s, want %s", merr.Command, CmdGetVoltageLimit)
			}
		})
	}
}

func TestMalformedResponseError_Unwrap(t *testing.T) {
	_, err := DecodeMilliamps(CmdGetCurrentLimit, []byte("x1"))
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Errorf("expected wrapped *strconv.NumError, got %v", err)
	}
}
