// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hantek

import (
	"time"

	"go.uber.org/zap"
)

// Config holds the connection settings of a PSU handle.
type Config struct {
	// Port is the serial device or bridge address
	Port string

	// BaudRate of the serial link
	BaudRate int

	// Timeout bounds every read from the device
	Timeout time.Duration

	// Logger receives frame traces at debug level (optional)
	Logger *zap.Logger
}

func defaultConfig() Config {
	return Config{
		Port:     DefaultPort,
		BaudRate: DefaultBaudRate,
		Timeout:  DefaultTimeout,
		Logger:   zap.NewNop(),
	}
}

// Option is a functional option for configuring a PSU.
type Option func(*Config)

// WithPort sets the serial device, e.g. "/dev/ttyUSB0" or "COM3".
func WithPort(port string) Option {
	return func(c *Config) {
		if port != "" {
			c.Port = port
		}
	}
}

// WithBaudRate sets the serial baud rate. Default is 2400.
func WithBaudRate(baud int) Option {
	return func(c *Config) {
		if baud > 0 {
			c.BaudRate = baud
		}
	}
}

// WithTimeout sets the read timeout. Default is 40ms.
//
// Example:
//
//	psu := hantek.New(factory, hantek.WithTimeout(time.Second))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithLogger sets the logger used for frame traces.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}
