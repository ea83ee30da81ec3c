// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command mfdump inspects persisted metafiles.
//
//	mfdump [-v] [-trace] [-png out.png] [-size 512] [-config tuning.toml] file.tvmf
//
// It prints the container identity, counts and fingerprint. With -v it
// disassembles the record stream, with -trace it prints the display
// playback as YAML, and with -png it renders the geometry fitted to a
// square image. Resources are resolved to key-only placeholders, so
// textures render untextured.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/backends/raster"
	"github.com/gogpu/metafile/backends/trace"
	"github.com/gogpu/metafile/container"
	"github.com/gogpu/metafile/player"
	"github.com/gogpu/metafile/record"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("mfdump: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("mfdump", flag.ContinueOnError)
	var (
		verbose = fs.Bool("v", false, "disassemble the record stream")
		traced  = fs.Bool("trace", false, "print the display playback as YAML")
		pngOut  = fs.String("png", "", "render to this PNG file")
		size    = fs.Int("size", 512, "rendered image size in pixels")
		cfgPath = fs.String("config", "", "TOML tuning file")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: mfdump [flags] file.tvmf")
	}

	cfg := metafile.DefaultConfig()
	if *cfgPath != "" {
		var err error
		if cfg, err = metafile.LoadConfigFile(*cfgPath); err != nil {
			return err
		}
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()
	c, err := container.ReadFrom(f, container.KeyOnly)
	if err != nil {
		return err
	}
	defer c.Destroy()

	summary(stdout, c)

	if *verbose {
		text, err := record.Disassemble(c.Bytes())
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, text)
	}

	p := player.New(player.WithConfig(cfg))
	if *traced {
		r := trace.New()
		if err := p.Play(c, r, false, true); err != nil {
			return err
		}
		if err := r.WriteYAML(stdout); err != nil {
			return err
		}
	}
	if *pngOut != "" {
		if err := render(p, c, *size, *pngOut); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "rendered %s (%dx%d)\n", *pngOut, *size, *size)
	}
	return nil
}

func summary(w io.Writer, c *container.Container) {
	fmt.Fprintf(w, "id          %s\n", c.ID())
	fmt.Fprintf(w, "size        %d bytes\n", c.Size())
	fmt.Fprintf(w, "records     %d (%d draws)\n", c.RecordCount(), c.DrawCount())
	fmt.Fprintf(w, "blobs       %d\n", c.BlobCount())
	fmt.Fprintf(w, "resources   %d\n", c.ResourceCount())
	fmt.Fprintf(w, "fingerprint %016x\n", c.Fingerprint())
	for op := record.Opcode(1); op.Valid(); op++ {
		if n := c.OpcodeCount(op); n > 0 {
			fmt.Fprintf(w, "  %-20s %d\n", op, n)
		}
	}
}

// render fits the XY bounds of the geometry into a size x size image.
func render(p *player.Player, c *container.Container, size int, path string) error {
	var b bounds
	if err := p.PlayForPick(c, &b, false); err != nil {
		return err
	}
	minX, minY, maxX, maxY := b.square()

	r := raster.New(size, size, raster.WithView(raster.Ortho(minX, minY, maxX, maxY, size, size)))
	if err := p.Play(c, r, false, false); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WritePNG(out); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
