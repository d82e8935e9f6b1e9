// Package metrics exposes the measurements of one validation run as a
// Prometheus registry that is written to a node_exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "cap5"

// Run holds the metrics of a single run on a private registry, so repeated
// runs in one process never collide.
type Run struct {
	reg *prometheus.Registry

	StageSeconds    *prometheus.GaugeVec
	Rows            prometheus.Gauge
	Columns         prometheus.Gauge
	MemoryBytes     prometheus.Gauge
	NullCells       prometheus.Gauge
	DuplicateRows   prometheus.Gauge
	RangeFlags      *prometheus.GaugeVec
	ChecksumResults *prometheus.GaugeVec
	Artifacts       *prometheus.CounterVec
	FigureFailures  prometheus.Counter
	Success         prometheus.Gauge
	LastRun         prometheus.Gauge
}

// NewRun registers the run metrics on a fresh registry.
func NewRun() *Run {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Run{
		reg: reg,
		StageSeconds: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each stage of the run.",
		}, []string{"stage"}),
		Rows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "dataset_rows",
			Help:      "Number of rows in the validated dataset.",
		}),
		Columns: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "dataset_columns",
			Help:      "Number of columns in the validated dataset.",
		}),
		MemoryBytes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "dataset_memory_bytes",
			Help:      "Estimated in-memory size of the dataset.",
		}),
		NullCells: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "dataset_null_cells",
			Help:      "Total null cells across all columns.",
		}),
		DuplicateRows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "dataset_duplicate_rows",
			Help:      "Rows identical to an earlier row.",
		}),
		RangeFlags: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "range_flags",
			Help:      "Numeric columns raising each range flag.",
		}, []string{"flag"}),
		ChecksumResults: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "checksum_results",
			Help:      "Manifest verification results, by status.",
		}, []string{"status"}),
		Artifacts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "artifacts_written_total",
			Help:      "Artifacts written, by kind.",
		}, []string{"kind"}),
		FigureFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "figure_failures_total",
			Help:      "Figures skipped because rendering failed.",
		}),
		Success: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "run_success",
			Help:      "1 when the run completed, 0 otherwise.",
		}),
		LastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "run_timestamp_seconds",
			Help:      "Unix time the run finished.",
		}),
	}
}

// Registry returns the private registry.
func (r *Run) Registry() *prometheus.Registry { return r.reg }

// ObserveStage records the duration of a stage.
func (r *Run) ObserveStage(stage string, d time.Duration) {
	r.StageSeconds.WithLabelValues(stage).Set(d.Seconds())
}

// Timer starts a stage; calling the returned func records it.
func (r *Run) Timer(stage string) func() {
	start := time.Now()
	return func() { r.ObserveStage(stage, time.Since(start)) }
}

// Finish marks the run outcome.
func (r *Run) Finish(ok bool, at time.Time) {
	if ok {
		r.Success.Set(1)
	} else {
		r.Success.Set(0)
	}
	r.LastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in the text exposition format. The
// client library writes a temp file and renames it into place.
func (r *Run) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
