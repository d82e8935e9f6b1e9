// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// cap5check validates the chapter 5 meteorological dataset and writes the
// evidence tree (logs, tabelas, figuras, metadata).
//
// Usage:
//
//	cap5check validate [--env configs/cap5_paths.env] [--lenient]
//	cap5check confirm  [--env FILE]
//	cap5check sort     [--env FILE] [--in FILE] [--out FILE]
//	cap5check persist  [--env FILE] [--candidate FILE]... [--out FILE]
//	cap5check checksums verify|write [--env FILE] [--manifest FILE]
//	cap5check init     [--env FILE] [--force]
//	cap5check runs list|verify [--env FILE]
//	cap5check version
//
// Exit codes:
//   - 0: success
//   - 1: run or validation failure
//   - 2: usage error
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/cap5check/internal/config"
	caplog "github.com/ManuGH/cap5check/internal/log"
	"github.com/ManuGH/cap5check/internal/version"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

// cli carries the process streams so commands can be tested in-process.
type cli struct {
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// level comes from CAP5_LOG_LEVEL until the settings are loaded
	caplog.Reconfigure(caplog.Config{
		Output:  caplog.Console(stderr),
		Version: version.Version,
	})
	c := &cli{stdout: stdout, stderr: stderr}

	if len(args) == 0 {
		c.usage(stderr)
		return exitUsage
	}
	switch args[0] {
	case "-h", "--help", "help":
		c.usage(stdout)
		return exitOK
	case "validate":
		return c.runValidate(ctx, args[1:])
	case "confirm":
		return c.runConfirm(ctx, args[1:])
	case "sort":
		return c.runSort(ctx, args[1:])
	case "persist":
		return c.runPersist(ctx, args[1:])
	case "checksums":
		return c.runChecksums(ctx, args[1:])
	case "init":
		return c.runInit(args[1:])
	case "runs":
		return c.runRuns(ctx, args[1:])
	case "version", "--version":
		_, _ = fmt.Fprintln(stdout, version.String())
		return exitOK
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		c.usage(stderr)
		return exitUsage
	}
}

func (c *cli) usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  cap5check validate [--env FILE] [--lenient]")
	_, _ = fmt.Fprintln(w, "  cap5check confirm  [--env FILE]")
	_, _ = fmt.Fprintln(w, "  cap5check sort     [--env FILE] [--in FILE] [--out FILE]")
	_, _ = fmt.Fprintln(w, "  cap5check persist  [--env FILE] [--candidate FILE]... [--out FILE]")
	_, _ = fmt.Fprintln(w, "  cap5check checksums verify|write [--env FILE] [--manifest FILE] [FILE...]")
	_, _ = fmt.Fprintln(w, "  cap5check init     [--env FILE] [--force]")
	_, _ = fmt.Fprintln(w, "  cap5check runs list [--env FILE] [--limit N]")
	_, _ = fmt.Fprintln(w, "  cap5check runs verify [--env FILE] [--mode quick|full]")
	_, _ = fmt.Fprintln(w, "  cap5check version")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintf(w, "The env file defaults to %s.\n", config.DefaultEnvFile)
}

// loadConfig resolves the configuration and reports errors on stderr.
func (c *cli) loadConfig(envFile string) (config.AppConfig, bool) {
	cfg, err := config.NewLoader(envFile, version.Version).Load()
	if err != nil {
		if envFile == "" {
			envFile = config.DefaultEnvFile
		}
		_, _ = fmt.Fprintf(c.stderr, "Configuration error in %s:\n  %v\n", envFile, err)
		return cfg, false
	}
	return cfg, true
}
