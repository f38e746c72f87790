// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Thermoquad/hantekpsu/internal/config"
	"github.com/Thermoquad/hantekpsu/internal/logger"
	"github.com/Thermoquad/hantekpsu/pkg/hantek"
)

var (
	// Serial connection flags
	portName string
	baudRate int
	timeout  time.Duration

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	simulate   bool
	configPath string
	logLevel   string

	// Resolved in PersistentPreRunE
	settings config.Config
	log      = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "hantekpsu",
	Short: "Control Hantek HDP bench power supplies",
	Long: `hantekpsu - drive a Hantek HDP-series bench power supply over its serial
command protocol.

Every command opens the link, sends one frame, reads the reply if there is
one, and closes the link again.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 2400] [--timeout 40ms]
  WebSocket: --url ws://host/path [--username user]
  Simulator: --simulate

Settings can also come from a config file (--config) or HANTEK_* environment
variables, e.g. HANTEK_PORT=/dev/ttyUSB1. For WebSocket authentication the
password is read from HANTEK_PASSWORD, or prompted interactively if not set.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	flags := rootCmd.PersistentFlags()

	// Serial connection flags
	flags.StringVarP(&portName, "port", "p", hantek.DefaultPort, "Serial port device")
	flags.IntVarP(&baudRate, "baud", "b", hantek.DefaultBaudRate, "Baud rate (serial only)")
	flags.DurationVarP(&timeout, "timeout", "t", hantek.DefaultTimeout, "Reply read timeout")

	// WebSocket connection flags
	flags.StringVarP(&wsURL, "url", "u", "", "WebSocket bridge URL (ws:// or wss://)")
	flags.StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	flags.BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	flags.BoolVar(&simulate, "simulate", false, "Talk to an in-memory simulated PSU")
	flags.StringVar(&configPath, "config", "", "Config file (yaml, toml or json)")
	flags.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// flagKeys maps persistent flags to config keys
var flagKeys = map[string]string{
	"port":          "port",
	"baud":          "baud",
	"timeout":       "timeout",
	"url":           "url",
	"username":      "username",
	"no-ssl-verify": "no_ssl_verify",
	"simulate":      "simulate",
	"log-level":     "log.level",
}

func loadSettings(cmd *cobra.Command, args []string) error {
	v := config.New()
	if err := bindFlags(v, cmd.Root()); err != nil {
		return err
	}

	cfg, err := config.Load(v, configPath)
	if err != nil {
		return err
	}
	settings = cfg

	l, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger setup failed: %w", err)
	}
	log = l
	return nil
}

func bindFlags(v *viper.Viper, root *cobra.Command) error {
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, root.PersistentFlags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	defer func() { _ = log.Sync() }()
	return rootCmd.Execute()
}
