// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/ManuGH/cap5check/internal/layout"
	"github.com/ManuGH/cap5check/internal/pipeline"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func (c *cli) flagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet("cap5check "+name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	env := new(string)
	fs.StringVar(env, "env", "", "path to the paths env file")
	fs.StringVar(env, "e", "", "path to the paths env file (shorthand)")
	return fs, env
}

func (c *cli) runner(envFile string) (*pipeline.Runner, bool) {
	cfg, ok := c.loadConfig(envFile)
	if !ok {
		return nil, false
	}
	return pipeline.New(cfg, pipeline.Options{Console: c.stderr}), true
}

func (c *cli) runValidate(ctx context.Context, args []string) int {
	fs, env := c.flagSet("validate")
	lenient := fs.Bool("lenient", false, "continue when checksums do not verify")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	cfg, ok := c.loadConfig(*env)
	if !ok {
		return exitFail
	}
	if *lenient {
		cfg.Settings.StrictChecksums = false
	}

	md, err := pipeline.New(cfg, pipeline.Options{Console: c.stderr}).Validate(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(c.stderr, "Validation failed: %v\n", err)
		if md != nil {
			_, _ = fmt.Fprintf(c.stderr, "Metadata: %s\n", layout.New(cfg.Paths.OutDir).RunMetadata(md.RunID))
		}
		return exitFail
	}
	_, _ = fmt.Fprintf(c.stdout, "Run %s completed\n", md.RunID)
	_, _ = fmt.Fprintf(c.stdout, "  rows=%d columns=%d duplicates=%d\n", md.Profile.Rows, md.Profile.Columns, md.Duplicates.Rows)
	_, _ = fmt.Fprintf(c.stdout, "  metadata: %s\n", layout.New(cfg.Paths.OutDir).RunMetadata(md.RunID))
	return exitOK
}

func (c *cli) runConfirm(ctx context.Context, args []string) int {
	fs, env := c.flagSet("confirm")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	r, ok := c.runner(*env)
	if !ok {
		return exitFail
	}
	res, err := r.Confirm(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(c.stderr, "Confirmation failed: %v\n", err)
		return exitFail
	}
	_, _ = fmt.Fprintf(c.stdout, "same shape: %t, same columns: %t\n", res.SameShape, res.SameColumns)
	_, _ = fmt.Fprintf(c.stdout, "  %s\n  %s\n", res.SummaryPath, res.SchemaPath)
	return exitOK
}

func (c *cli) runSort(ctx context.Context, args []string) int {
	fs, env := c.flagSet("sort")
	in := fs.String("in", "", "input parquet (default: configured parquet)")
	out := fs.String("out", "", "output parquet (default: ordered dataset next to the input)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	r, ok := c.runner(*env)
	if !ok {
		return exitFail
	}
	res, err := r.Sort(ctx, *in, *out)
	if err != nil {
		_, _ = fmt.Fprintf(c.stderr, "Ordering failed: %v\n", err)
		return exitFail
	}
	_, _ = fmt.Fprintf(c.stdout, "ordered %d rows (%s .. %s, %d repeated timestamps)\n  %s\n",
		res.Rows, res.After.Min.Format("2006-01-02 15:04:05"), res.After.Max.Format("2006-01-02 15:04:05"),
		res.After.DuplicateTimestamps, res.Output)
	return exitOK
}

func (c *cli) runPersist(ctx context.Context, args []string) int {
	fs, env := c.flagSet("persist")
	var candidates stringList
	fs.Var(&candidates, "candidate", "candidate input, in priority order (repeatable)")
	out := fs.String("out", "", "master parquet (default: dataset_mestre_meteorologico.parquet)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	r, ok := c.runner(*env)
	if !ok {
		return exitFail
	}
	res, err := r.Persist(ctx, candidates, *out)
	if err != nil {
		_, _ = fmt.Fprintf(c.stderr, "Persistence failed: %v\n", err)
		return exitFail
	}
	_, _ = fmt.Fprintf(c.stdout, "master dataset: %s (from %s, %d rows)\n", res.Output, res.Input, res.Rows)
	return exitOK
}
