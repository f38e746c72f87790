// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/Thermoquad/hantekpsu/internal/config"
	"github.com/Thermoquad/hantekpsu/pkg/hantek"
	"github.com/Thermoquad/hantekpsu/pkg/hantek/hantektest"
	"github.com/Thermoquad/hantekpsu/pkg/transport"
)

// simulator backs --simulate for the lifetime of the process
var simulator *hantektest.Simulator

func sharedSimulator() *hantektest.Simulator {
	if simulator == nil {
		simulator = hantektest.NewSimulator()
	}
	return simulator
}

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv(config.EnvPrefix + "_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	// Read password without echo
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// transportFactory picks the link described by cfg
func transportFactory(cfg config.Config) (hantek.TransportFactory, string, error) {
	if cfg.Simulate {
		return sharedSimulator().Factory(), "Simulator", nil
	}

	if cfg.URL != "" {
		password := ""
		if cfg.Username != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		ws, err := transport.NewWebSocket(transport.WebSocketConfig{
			URL:           cfg.URL,
			Username:      cfg.Username,
			Password:      password,
			SkipTLSVerify: cfg.NoSSLVerify,
			Timeout:       cfg.Timeout,
		})
		if err != nil {
			return nil, "", err
		}

		factory := func(string, int, time.Duration) hantek.Transport { return ws }
		return factory, fmt.Sprintf("WebSocket: %s", cfg.URL), nil
	}

	factory := func(port string, baud int, timeout time.Duration) hantek.Transport {
		return transport.NewSerial(port, baud, timeout)
	}
	return factory, fmt.Sprintf("Serial: %s @ %d baud", cfg.Port, cfg.Baud), nil
}

// OpenPSU builds a PSU handle from the resolved settings
func OpenPSU() (*hantek.PSU, string, error) {
	factory, connInfo, err := transportFactory(settings)
	if err != nil {
		return nil, "", err
	}

	psu := hantek.New(factory,
		hantek.WithPort(settings.Port),
		hantek.WithBaudRate(settings.Baud),
		hantek.WithTimeout(settings.Timeout),
		hantek.WithLogger(log),
	)
	return psu, connInfo, nil
}
