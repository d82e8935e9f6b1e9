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
	"time"

	"github.com/ManuGH/cap5check/internal/layout"
	"github.com/ManuGH/cap5check/internal/ledger"
	"github.com/ManuGH/cap5check/internal/persistence/sqlite"
)

func (c *cli) runRuns(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printRunsUsage(c.stdout)
		return exitOK
	}
	switch args[0] {
	case "list":
		return c.runRunsList(ctx, args[1:])
	case "verify":
		return c.runRunsVerify(ctx, args[1:])
	default:
		_, _ = fmt.Fprintf(c.stderr, "Unknown subcommand: %s\n\n", args[0])
		printRunsUsage(c.stderr)
		return exitUsage
	}
}

func printRunsUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  cap5check runs list   [--env FILE] [--limit N]")
	_, _ = fmt.Fprintln(w, "  cap5check runs verify [--env FILE] [--mode quick|full]")
}

func (c *cli) ledgerPath(envFile string) (string, bool) {
	cfg, ok := c.loadConfig(envFile)
	if !ok {
		return "", false
	}
	path := layout.New(cfg.Paths.OutDir).Ledger()
	if _, err := os.Stat(path); err != nil {
		_, _ = fmt.Fprintf(c.stderr, "No run ledger at %s\n", path)
		return "", false
	}
	return path, true
}

func (c *cli) runRunsList(ctx context.Context, args []string) int {
	fs, env := c.flagSet("runs list")
	limit := fs.Int("limit", 20, "number of runs to show (0 for all)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	path, ok := c.ledgerPath(*env)
	if !ok {
		return exitFail
	}

	l, err := ledger.Open(ctx, path)
	if err != nil {
		_, _ = fmt.Fprintf(c.stderr, "Opening ledger failed: %v\n", err)
		return exitFail
	}
	defer l.Close()

	runs, err := l.List(ctx, *limit)
	if err != nil {
		_, _ = fmt.Fprintf(c.stderr, "Listing runs failed: %v\n", err)
		return exitFail
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RUN\tCOMMAND\tSTATUS\tROWS\tCOLS\tDUPS\tSTARTED\tERROR")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.RunID, r.Command, r.Status, r.Rows, r.Columns, r.Duplicates,
			r.StartedAt.Local().Format(time.DateTime), r.Error)
	}
	_ = tw.Flush()
	return exitOK
}

func (c *cli) runRunsVerify(ctx context.Context, args []string) int {
	fs, env := c.flagSet("runs verify")
	modeFlag := fs.String("mode", string(sqlite.ModeQuick), "verification mode: quick or full")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	mode, err := sqlite.ParseMode(*modeFlag)
	if err != nil {
		_, _ = fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitUsage
	}
	path, ok := c.ledgerPath(*env)
	if !ok {
		return exitFail
	}

	issues, err := ledger.Verify(ctx, path, mode)
	if err != nil {
		_, _ = fmt.Fprintf(c.stderr, "Verification failed: %v\n", err)
		return exitFail
	}
	if len(issues) > 0 {
		_, _ = fmt.Fprintf(c.stderr, "%s is corrupt:\n", path)
		for _, is := range issues {
			_, _ = fmt.Fprintf(c.stderr, "  %s\n", is)
		}
		return exitFail
	}
	_, _ = fmt.Fprintf(c.stdout, "%s: ok (%s)\n", path, mode)
	return exitOK
}
