// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// panelctl powers a Sony MIPI panel up and down and sets its backlight.
//
// Use --sim to run against an emulated panel and backlight: the DSI packets
// are written to --capture and can be read back with "panelctl trace".
package main

import (
	"log"

	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:          "panelctl",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
	}
	addRigFlags(cmd)

	cmd.AddCommand(powerCommands()...)
	cmd.AddCommand(backlightCommand())
	cmd.AddCommand(planCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "trace FILE",
		Short: "Decode a DSI packet capture",
		Args:  cobra.ExactArgs(1),
		RunE:  trace,
	})

	if err := cmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}
