// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/hantekpsu/internal/config"
)

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := newWithOutput(config.LogConfig{Level: "warn", Format: "console"}, &buf)
	require.NoError(t, err)

	log.Debug("Sending frame")
	log.Warn("Query failed")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "Sending frame")
	assert.Contains(t, out, "Query failed")
	assert.Contains(t, out, "warn")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := newWithOutput(config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Info("Connected")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Connected", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "ts")
	assert.Contains(t, entry, "caller")
}

func TestNew_FileGetsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hantek.log")
	var buf bytes.Buffer

	log, err := newWithOutput(config.LogConfig{
		Level:  "error",
		Format: "console",
		File:   config.LogFileConfig{Filename: path, MaxSizeMB: 1},
	}, &buf)
	require.NoError(t, err)

	log.Debug("Sending frame")
	_ = log.Sync()

	assert.Empty(t, buf.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Sending frame")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud", Format: "console"})
	assert.Error(t, err)
}
