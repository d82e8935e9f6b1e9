// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"errors"
	"fmt"

	"github.com/ManuGH/cap5check/internal/config"
	"github.com/ManuGH/cap5check/internal/layout"
)

func (c *cli) runInit(args []string) int {
	fs, env := c.flagSet("init")
	force := fs.Bool("force", false, "overwrite an existing env file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	path := *env
	if path == "" {
		path = config.DefaultEnvFile
	}

	err := config.WriteTemplate(path, *force)
	switch {
	case errors.Is(err, config.ErrConfigExists):
		_, _ = fmt.Fprintf(c.stderr, "%v (use --force to overwrite)\n", err)
		return exitFail
	case err != nil:
		_, _ = fmt.Fprintf(c.stderr, "Writing %s failed: %v\n", path, err)
		return exitFail
	}
	_, _ = fmt.Fprintf(c.stdout, "wrote %s\n", path)

	cfg, ok := c.loadConfig(path)
	if !ok {
		return exitFail
	}
	l := layout.New(cfg.Paths.OutDir)
	if err := l.Ensure(); err != nil {
		_, _ = fmt.Fprintf(c.stderr, "Creating output layout failed: %v\n", err)
		return exitFail
	}
	for _, d := range l.Dirs() {
		_, _ = fmt.Fprintf(c.stdout, "  %s/\n", d)
	}
	return exitOK
}
