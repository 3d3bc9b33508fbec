// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/GermanBionicSystems/mipipanel/sonypanel"
	"github.com/spf13/cobra"
)

func powerCommands() []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "reset",
			Short: "Pulse the panel reset line",
			Args:  cobra.ExactArgs(0),
			RunE: func(*cobra.Command, []string) error {
				return withRig(func(r *rig) error { return r.panel.Reset() })
			},
		},
		{
			Use:   "on",
			Short: "Reset the panel and send the power on sequence",
			Args:  cobra.ExactArgs(0),
			RunE: func(*cobra.Command, []string) error {
				return withRig(powerOn)
			},
		},
		{
			Use:   "off",
			Short: "Send the power off sequence and hold the panel in reset",
			Args:  cobra.ExactArgs(0),
			RunE: func(*cobra.Command, []string) error {
				return withRig(powerOff)
			},
		},
		{
			Use:   "cycle",
			Short: "Power the panel off then on",
			Args:  cobra.ExactArgs(0),
			RunE: func(*cobra.Command, []string) error {
				return withRig(func(r *rig) error {
					if err := powerOff(r); err != nil {
						return err
					}
					return powerOn(r)
				})
			},
		},
	}
}

func powerOn(r *rig) error {
	if err := r.panel.PowerOn(sonypanel.NewHandle()); err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", r.panel, r.panel.State())
	return nil
}

func powerOff(r *rig) error {
	if err := r.panel.PowerOff(sonypanel.NewHandle()); err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", r.panel, r.panel.State())
	return nil
}
