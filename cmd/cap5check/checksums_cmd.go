// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ManuGH/cap5check/internal/checksum"
)

func (c *cli) runChecksums(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printChecksumsUsage(c.stdout)
		return exitOK
	}
	switch args[0] {
	case "verify":
		return c.runChecksumsVerify(ctx, args[1:])
	case "write":
		return c.runChecksumsWrite(ctx, args[1:])
	default:
		_, _ = fmt.Fprintf(c.stderr, "Unknown subcommand: %s\n\n", args[0])
		printChecksumsUsage(c.stderr)
		return exitUsage
	}
}

func printChecksumsUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  cap5check checksums verify [--env FILE] [--manifest FILE]")
	_, _ = fmt.Fprintln(w, "  cap5check checksums write  [--env FILE] [--manifest FILE] [FILE...]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "write hashes the configured parquet and csv inputs unless files are given.")
}

func (c *cli) runChecksumsVerify(ctx context.Context, args []string) int {
	fs, env := c.flagSet("checksums verify")
	manifest := fs.String("manifest", "", "manifest path (default: configured CAP5_SHA256SUMS)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	cfg, ok := c.loadConfig(*env)
	if !ok {
		return exitFail
	}
	path := cfg.Paths.Manifest
	if *manifest != "" {
		path = *manifest
	}

	rep, err := checksum.Verify(ctx, path, cfg.Paths.Parquet, cfg.Paths.CSV)
	if err != nil {
		_, _ = fmt.Fprintf(c.stderr, "Verification failed: %v\n", err)
		return exitFail
	}
	if !rep.Present {
		_, _ = fmt.Fprintf(c.stderr, "Manifest not found: %s\n", path)
		return exitFail
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
	for _, r := range rep.Results {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Status, r.Name, r.Detail)
	}
	_ = tw.Flush()

	if err := rep.Err(); err != nil {
		_, _ = fmt.Fprintln(c.stderr, err)
		return exitFail
	}
	return exitOK
}

func (c *cli) runChecksumsWrite(ctx context.Context, args []string) int {
	fs, env := c.flagSet("checksums write")
	manifest := fs.String("manifest", "", "manifest path (default: configured CAP5_SHA256SUMS)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	cfg, ok := c.loadConfig(*env)
	if !ok {
		return exitFail
	}
	path := cfg.Paths.Manifest
	if *manifest != "" {
		path = *manifest
	}

	files := fs.Args()
	if len(files) == 0 {
		for _, f := range []string{cfg.Paths.Parquet, cfg.Paths.CSV} {
			if f == "" {
				continue
			}
			if _, err := os.Stat(f); err == nil {
				files = append(files, f)
			}
		}
	}
	if len(files) == 0 {
		_, _ = fmt.Fprintln(c.stderr, "Error: no input files to hash")
		return exitFail
	}

	m, err := checksum.WriteManifest(ctx, path, files)
	if err != nil {
		_, _ = fmt.Fprintf(c.stderr, "Writing manifest failed: %v\n", err)
		return exitFail
	}
	_, _ = c.stdout.Write(checksum.Format(m))
	_, _ = fmt.Fprintf(c.stdout, "wrote %s\n", path)
	return exitOK
}
