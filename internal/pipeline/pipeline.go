// Package pipeline runs the extract, transform and load stages in order and
// records each milestone in the progress log.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bankcap/banketl/internal/config"
	"github.com/bankcap/banketl/internal/dataset"
	"github.com/bankcap/banketl/internal/extract"
	"github.com/bankcap/banketl/internal/model"
	"github.com/bankcap/banketl/internal/progress"
	"github.com/bankcap/banketl/internal/rates"
	"github.com/bankcap/banketl/internal/report"
	"github.com/bankcap/banketl/internal/store"
	"github.com/bankcap/banketl/internal/transform"
)

const tracerName = "banketl.internal.pipeline"

// Progress log messages, one per completed stage.
const (
	MsgPreliminaries = "Preliminaries complete. Initiating ETL process"
	MsgExtracted     = "Data extraction complete. Initiating Transformation process"
	MsgTransformed   = "Data transformation complete. Initiating loading process"
	MsgCSVSaved      = "Data saved to CSV file"
	MsgDBConnected   = "SQL Connection initiated."
	MsgDBLoaded      = "Data loaded to Database as table. Running the query"
	MsgQueried       = "Process Complete."
	MsgClosed        = "Server Connection closed"
)

// State is the last stage a run completed.
type State int

const (
	Init State = iota
	Extracted
	Transformed
	CSVSaved
	DBConnected
	DBLoaded
	Queried
	Closed
)

var stateNames = [...]string{
	Init:        "INIT",
	Extracted:   "EXTRACTED",
	Transformed: "TRANSFORMED",
	CSVSaved:    "CSV_SAVED",
	DBConnected: "DB_CONNECTED",
	DBLoaded:    "DB_LOADED",
	Queried:     "QUERIED",
	Closed:      "CLOSED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Source produces the raw bank records.
type Source interface {
	Extract(ctx context.Context) ([]model.BankRecord, error)
}

// Options overrides the collaborators New would otherwise build from the
// config. Zero values select the defaults.
type Options struct {
	Source Source           // defaults to an HTTP extractor for cfg.Source
	Out    io.Writer        // defaults to os.Stdout
	Clock  func() time.Time // defaults to time.Now

	// TracerProvider receives the run, stage and extract spans. Defaults to
	// the global provider.
	TracerProvider trace.TracerProvider
}

// Pipeline is a single ETL run. It is not reusable.
type Pipeline struct {
	cfg      *config.Config
	source   Source
	out      io.Writer
	progress *progress.Logger
	tracer   trace.Tracer
	state    State
}

// New builds a pipeline for cfg.
func New(cfg *config.Config, opts Options) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		source:   opts.Source,
		out:      opts.Out,
		progress: progress.New(cfg.Log.Path),
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	p.tracer = tp.Tracer(tracerName)
	if p.source == nil {
		p.source = extract.New(extract.Options{
			URL:            cfg.Source.URL,
			Timeout:        cfg.Source.Timeout,
			UserAgent:      cfg.Source.UserAgent,
			TracerProvider: tp,
		})
	}
	if p.out == nil {
		p.out = os.Stdout
	}
	if opts.Clock != nil {
		p.progress = p.progress.WithClock(opts.Clock)
	}
	return p
}

// State reports the last stage completed. After a failed run it stays at the
// stage before the failure.
func (p *Pipeline) State() State {
	return p.state
}

// Run executes every stage in order and stops at the first failure. The
// database, once opened, is closed on every exit path.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	ctx, span := p.tracer.Start(ctx, "Run")
	defer func() {
		span.SetAttributes(attribute.String("state", p.state.String()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "pipeline failed")
		}
		span.End()
	}()

	rounding, err := transform.ParseRounding(p.cfg.Rates.Rounding)
	if err != nil {
		return err
	}
	if err := store.ValidateTableName(p.cfg.Database.Table); err != nil {
		return err
	}
	if err := p.progress.Log(MsgPreliminaries); err != nil {
		return err
	}

	var records []model.BankRecord
	err = p.stage(ctx, "extract", Extracted, MsgExtracted, func(ctx context.Context) error {
		var err error
		records, err = p.source.Extract(ctx)
		return err
	})
	if err != nil {
		return err
	}

	var ds model.Dataset
	err = p.stage(ctx, "transform", Transformed, MsgTransformed, func(ctx context.Context) error {
		table, err := rates.Load(p.cfg.Rates.Path)
		if err != nil {
			return err
		}
		ds, err = transform.Apply(records, table, rounding)
		if err != nil {
			return err
		}
		report.Dataset(p.out, ds)
		return nil
	})
	if err != nil {
		return err
	}

	err = p.stage(ctx, "save csv", CSVSaved, MsgCSVSaved, func(ctx context.Context) error {
		return dataset.Save(p.cfg.Output.CSVPath, ds)
	})
	if err != nil {
		return err
	}

	var db *store.Store
	err = p.stage(ctx, "connect", DBConnected, MsgDBConnected, func(ctx context.Context) error {
		var err error
		db, err = store.Open(ctx, p.cfg.Database.Path)
		return err
	})
	if err != nil {
		return err
	}
	defer func() {
		if db != nil {
			err = errors.Join(err, db.Close())
		}
	}()

	err = p.stage(ctx, "load", DBLoaded, MsgDBLoaded, func(ctx context.Context) error {
		return db.Replace(ctx, p.cfg.Database.Table, ds)
	})
	if err != nil {
		return err
	}

	err = p.stage(ctx, "query", Queried, MsgQueried, func(ctx context.Context) error {
		return db.RunQueries(ctx, p.out, p.cfg.Queries)
	})
	if err != nil {
		return err
	}

	return p.stage(ctx, "close", Closed, MsgClosed, func(ctx context.Context) error {
		closeErr := db.Close()
		db = nil
		return closeErr
	})
}

// stage runs fn in its own span. On success it advances the state and writes
// msg to the progress log; on failure it returns the error prefixed with name.
func (p *Pipeline) stage(ctx context.Context, name string, next State, msg string, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("stage", name),
		attribute.String("from_state", p.state.String()),
	))
	defer span.End()

	start := time.Now()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name+" failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	p.state = next
	slog.DebugContext(ctx, "stage complete", "stage", name, "state", next, "elapsed", time.Since(start))
	return p.progress.Log(msg)
}
