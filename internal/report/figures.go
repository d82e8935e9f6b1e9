// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ManuGH/cap5check/internal/dataset"
	"github.com/ManuGH/cap5check/internal/fsutil"
	"github.com/ManuGH/cap5check/internal/layout"
	caplog "github.com/ManuGH/cap5check/internal/log"
)

// Figure formats.
const (
	FigurePNG = "png"
	FigureSVG = "svg"
)

// BoxplotName is the file stem of the combined boxplot.
const BoxplotName = "boxplot_primeiras_colunas"

var (
	figureWidth  = 8 * vg.Inch
	figureHeight = 4 * vg.Inch
)

// errNoValues marks a column without valid values to plot.
var errNoValues = errors.New("no valid values")

// FigureOptions control figure rendering.
type FigureOptions struct {
	MaxColumns int
	Bins       int
	Format     string
}

// Figures holds the written figure paths. Histograms maps column name to
// path; a missing entry means the figure was skipped.
type Figures struct {
	Histograms map[string]string `json:"histogramas"`
	Boxplot    string            `json:"boxplot,omitempty"`
}

// RenderFigures draws a histogram per numeric column (up to MaxColumns) and
// one boxplot of the same columns, concurrently. Individual failures are
// logged and skipped; only context cancellation is returned.
func RenderFigures(ctx context.Context, l layout.Layout, t *dataset.Table, opts FigureOptions) (Figures, error) {
	logger := caplog.WithComponentFromContext(ctx, "figures")
	cols := t.NumericColumns()
	if opts.MaxColumns >= 0 && len(cols) > opts.MaxColumns {
		cols = cols[:opts.MaxColumns]
	}
	figs := Figures{Histograms: make(map[string]string, len(cols))}
	if len(cols) == 0 {
		logger.Info().Str(caplog.FieldEvent, "figures.skipped").Msg("no numeric columns to plot")
		return figs, nil
	}

	type job struct {
		name string
		path string
		draw func() (*plot.Plot, error)
	}
	stems := make([]string, len(cols))
	for i, c := range cols {
		stems[i] = "hist_" + c.Name
	}
	stems = layout.UniqueStems(stems)

	jobs := make([]job, 0, len(cols)+1)
	for i, c := range cols {
		jobs = append(jobs, job{
			name: c.Name,
			path: l.Figure(stems[i], opts.Format),
			draw: func() (*plot.Plot, error) { return Histogram(c, opts.Bins) },
		})
	}
	jobs = append(jobs, job{
		path: l.Figure(BoxplotName, opts.Format),
		draw: func() (*plot.Plot, error) { return Boxplot(cols) },
	})

	written := make([]bool, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := renderTo(gctx, j.path, opts.Format, j.draw)
			switch {
			case err == nil:
				written[i] = true
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				logger.Warn().Err(err).
					Str(caplog.FieldEvent, "figures.failed").
					Str(caplog.FieldColumn, j.name).
					Str(caplog.FieldPath, j.path).
					Msg("figure skipped")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return figs, err
	}

	for i, j := range jobs {
		if !written[i] {
			continue
		}
		if j.name == "" {
			figs.Boxplot = j.path
			continue
		}
		figs.Histograms[j.name] = j.path
	}
	logger.Info().
		Str(caplog.FieldEvent, "figures.done").
		Int("histograms", len(figs.Histograms)).
		Bool("boxplot", figs.Boxplot != "").
		Msg("figures rendered")
	return figs, nil
}

func renderTo(ctx context.Context, path, format string, draw func() (*plot.Plot, error)) error {
	p, err := draw()
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(figureWidth, figureHeight, format)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return fsutil.WriteAtomic(ctx, path, func(w io.Writer) error {
		_, err := wt.WriteTo(w)
		return err
	})
}

// Histogram plots the distribution of one numeric column.
func Histogram(c *dataset.Column, bins int) (*plot.Plot, error) {
	vals := c.ValidFloats()
	if len(vals) == 0 {
		return nil, fmt.Errorf("histogram %s: %w", c.Name, errNoValues)
	}
	p := plot.New()
	p.Title.Text = "Histograma: " + c.Name
	p.X.Label.Text = c.Name
	p.Y.Label.Text = "frequência"

	h, err := plotter.NewHist(plotter.Values(vals), bins)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", c.Name, err)
	}
	p.Add(h)
	return p, nil
}

// Boxplot draws one box per column side by side.
func Boxplot(cols []*dataset.Column) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Boxplot (primeiras colunas numéricas)"

	names := make([]string, 0, len(cols))
	for _, c := range cols {
		vals := c.ValidFloats()
		if len(vals) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(20), float64(len(names)), plotter.Values(vals))
		if err != nil {
			return nil, fmt.Errorf("boxplot %s: %w", c.Name, err)
		}
		p.Add(b)
		names = append(names, c.Name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("boxplot: %w", errNoValues)
	}
	p.NominalX(names...)
	return p, nil
}
