// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// hantekpsu - Hantek bench power supply control
//
// A CLI and terminal UI for driving Hantek programmable power supplies
// over their serial command protocol.

package main

import (
	"os"

	"github.com/Thermoquad/hantekpsu/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
