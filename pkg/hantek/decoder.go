// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hantek

import (
	"bytes"
	"errors"
	"strconv"
	"unicode/utf8"
)

var (
	errEmptyPayload = errors.New("empty payload")
	errInvalidText  = errors.New("invalid UTF-8 text")
)

// DecodeModel returns the reply text unchanged. The reply must be valid
// UTF-8.
func DecodeModel(payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", &MalformedResponseError{Command: CmdGetModel, Err: errEmptyPayload}
	}
	if !utf8.Valid(payload) {
		return "", &MalformedResponseError{Command: CmdGetModel, Payload: payload, Err: errInvalidText}
	}
	return string(payload), nil
}

// DecodeVolts parses a centivolt reply into volts.
func DecodeVolts(c Command, payload []byte) (float64, error) {
	n, err := decodeInt(c, payload)
	if err != nil {
		return 0, err
	}
	return WireToVolts(n), nil
}

// DecodeMilliamps parses a milliamp reply.
func DecodeMilliamps(c Command, payload []byte) (int, error) {
	return decodeInt(c, payload)
}

// DecodeStatus parses an on/off reply; any nonzero value is on.
func DecodeStatus(payload []byte) (bool, error) {
	n, err := decodeInt(CmdGetOnOffStatus, payload)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// decodeInt parses a decimal reply, ignoring surrounding whitespace.
func decodeInt(c Command, payload []byte) (int, error) {
	text := bytes.TrimSpace(payload)
	if len(text) == 0 {
		return 0, &MalformedResponseError{Command: c, Payload: payload, Err: errEmptyPayload}
	}
	n, err := strconv.Atoi(string(text))
	if err != nil {
		return 0, &MalformedResponseError{Command: c, Payload: payload, Err: err}
	}
	return n, nil
}
