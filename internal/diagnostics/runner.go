// Package diagnostics runs the database setup and verification steps behind
// the dbsetup command.
package diagnostics

import (
	"context"
	"log/slog"
	"time"

	"github.com/artidentifier/artid/internal/catalog"
	"github.com/artidentifier/artid/internal/datastore"
	"github.com/artidentifier/artid/internal/errors"
	"github.com/artidentifier/artid/internal/logging"
	"github.com/artidentifier/artid/internal/observability/metrics"
	"github.com/artidentifier/artid/internal/telemetry"
)

// Step names one setup or verification step.
type Step string

const (
	StepTest       Step = "test"
	StepReset      Step = "reset"
	StepSetup      Step = "setup"
	StepSampleData Step = "sample-data"
	StepTestCRUD   Step = "test-crud"
)

// Selection lists the requested steps. All implies every step except Reset.
type Selection struct {
	Test       bool
	Reset      bool
	Setup      bool
	SampleData bool
	TestCRUD   bool
	All        bool
}

// Steps returns the selected steps in execution order.
func (s Selection) Steps() []Step {
	var steps []Step
	if s.All || s.Test {
		steps = append(steps, StepTest)
	}
	if s.Reset {
		steps = append(steps, StepReset)
	}
	if s.All || s.Setup {
		steps = append(steps, StepSetup)
	}
	if s.All || s.SampleData {
		steps = append(steps, StepSampleData)
	}
	if s.All || s.TestCRUD {
		steps = append(steps, StepTestCRUD)
	}
	return steps
}

// Result is the outcome of one step.
type Result struct {
	Step     Step          `yaml:"step"`
	Error    string        `yaml:"error,omitempty"`
	Duration time.Duration `yaml:"duration"`
}

// Report collects the outcome of a run.
type Report struct {
	Results    []Result        `yaml:"results"`
	Database   *datastore.Info `yaml:"database,omitempty"`
	Check      *QuickCheck     `yaml:"check,omitempty"`
	SampleData *SampleData     `yaml:"sample_data,omitempty"`
}

// OK reports whether every step succeeded.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if res.Error != "" {
			return false
		}
	}
	return true
}

// Runner executes steps against one engine.
type Runner struct {
	engine  *datastore.Engine
	catalog *catalog.Service
	logger  *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*runnerOptions)

type runnerOptions struct {
	metrics *metrics.DatastoreMetrics
}

// WithMetrics publishes table row counts and statistics cache activity on m.
func WithMetrics(m *metrics.DatastoreMetrics) RunnerOption {
	return func(o *runnerOptions) {
		o.metrics = m
	}
}

// NewRunner creates a Runner for engine.
func NewRunner(engine *datastore.Engine, opts ...RunnerOption) *Runner {
	var o runnerOptions
	for _, opt := range opts {
		opt(&o)
	}

	var svcOpts []catalog.Option
	if o.metrics != nil {
		svcOpts = append(svcOpts, catalog.WithMetrics(o.metrics))
	}

	return &Runner{
		engine:  engine,
		catalog: catalog.New(engine, svcOpts...),
		logger:  logging.ForService("diagnostics"),
	}
}

// Run executes steps in order. A failed step is logged and marks the report
// failed; later steps still run.
func (r *Runner) Run(ctx context.Context, steps []Step) *Report {
	report := &Report{}
	r.logger.Info("starting database setup and testing", "steps", steps)

	for _, step := range steps {
		start := time.Now()
		err := r.run(ctx, step, report)
		res := Result{Step: step, Duration: time.Since(start)}
		if err != nil {
			res.Error = err.Error()
			r.logger.Error("step failed", "step", step, "error", err, "duration", res.Duration)
			telemetry.CaptureError(err, "diagnostics")
		} else {
			r.logger.Info("step completed", "step", step, "duration", res.Duration)
		}
		report.Results = append(report.Results, res)
	}

	if report.OK() {
		r.logger.Info("all operations completed successfully")
	} else {
		r.logger.Error("some operations failed")
	}
	return report
}

func (r *Runner) run(ctx context.Context, step Step, report *Report) error {
	switch step {
	case StepTest:
		return r.testConnection(ctx, report)
	case StepReset:
		defer r.catalog.InvalidateStatistics()
		return r.engine.DropSchema(ctx)
	case StepSetup:
		return r.engine.Migrate(ctx)
	case StepSampleData:
		sample, err := CreateSampleData(ctx, r.engine)
		if err != nil {
			return err
		}
		// written outside the catalog service
		r.catalog.InvalidateStatistics()
		report.SampleData = sample
		r.logger.Info("sample data ready",
			"artwork", sample.Artwork,
			"exhibition", sample.Exhibition,
			"photo", sample.Photo,
			"matching_confidence", sample.MatchingConfidence,
			"created", sample.Created)
		return nil
	case StepTestCRUD:
		check, err := RunQuickCheck(ctx, r.engine, r.catalog)
		if err != nil {
			return err
		}
		report.Check = check
		r.logger.Info("crud operations verified",
			"artworks", check.Counts.Artworks,
			"appearances", check.Counts.Appearances,
			"van_gogh_works", check.VanGoghWorks,
			"starry_night_titles", check.StarryNightTitles,
			"catalog_number_found", check.CatalogNumberFound,
			"total_appearances", check.Statistics.TotalAppearances)
		return nil
	default:
		return errors.Newf("unknown step %q", step).
			Component("diagnostics").
			Category(errors.CategoryValidation).
			Build()
	}
}

func (r *Runner) testConnection(ctx context.Context, report *Report) error {
	if err := r.engine.Ping(ctx); err != nil {
		return err
	}
	info, err := r.engine.Introspect(ctx)
	if err != nil {
		return err
	}
	report.Database = info
	r.logger.Info("database connection successful", "backend", info.Backend, "version", info.Version, "url", info.URL)
	return nil
}
