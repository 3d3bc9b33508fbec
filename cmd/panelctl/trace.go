// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/GermanBionicSystems/mipipanel/mipidsi"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func trace(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	defer f.Close()
	return dumpPackets(os.Stdout, f)
}

// dumpPackets prints every packet in the capture r, one per line.
func dumpPackets(w io.Writer, r io.Reader) error {
	pkts := make(chan mipidsi.Packet, 16)

	var g errgroup.Group
	g.Go(func() error { return printPackets(w, pkts) })
	g.Go(func() error { return readPackets(pkts, r) })

	return g.Wait()
}

func readPackets(pkts chan<- mipidsi.Packet, r io.Reader) error {
	defer close(pkts)
	d := mipidsi.NewDecoder(r)
	for i := 0; ; i++ {
		p, err := d.Decode()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("packet %d: %w", i, err)
		}
		pkts <- p
	}
}

func printPackets(w io.Writer, pkts <-chan mipidsi.Packet) error {
	var err error
	i := 0
	for p := range pkts {
		// Keep draining so the reader never blocks.
		if err == nil {
			_, err = fmt.Fprintf(w, "%3d vc%d %s\n", i, p.VC, p.Cmd)
		}
		i++
	}
	return err
}
