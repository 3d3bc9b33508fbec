// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/GermanBionicSystems/mipipanel/pulsebl"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func backlightCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backlight LEVEL",
		Short: "Set the backlight brightness, 0 turns it off",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parsing level: %w", err)
			}
			return withRig(func(r *rig) error { return setBacklight(r, level) })
		},
	}
}

func setBacklight(r *rig, level int) error {
	if err := r.bl.SetLevel(level); err != nil {
		return err
	}
	if r.sim == nil {
		return nil
	}
	// Show what the controller decoded from the pulse train.
	return errors.Join(r.sim.Refresh(), r.sim.Halt())
}

func planCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan LEVEL",
		Short: "Print the pulse train for a brightness level without touching hardware",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parsing level: %w", err)
			}
			return printPlan(os.Stdout, level)
		},
	}
}

func printPlan(w io.Writer, level int) error {
	d, err := pulsebl.New(&gpiotest.Pin{N: "BL"}, &pulsebl.Opts{MaxLevel: maxLevel})
	if err != nil {
		return err
	}
	p, err := d.Plan(level)
	if err != nil {
		return err
	}
	if p.Pulses == 0 {
		_, err = fmt.Fprintf(w, "level %d/%d: off\n", p.Level, d.MaxLevel())
		return err
	}
	_, err = fmt.Fprintf(w, "level %d/%d: %d pulses (count %d), low %s, high %s, %s total\n",
		p.Level, d.MaxLevel(), p.Pulses, p.Count, p.Low, p.High, p.Duration())
	return err
}
