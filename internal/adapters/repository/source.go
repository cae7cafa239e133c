package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/staffwise/internal/domain/model"
	"github.com/okian/staffwise/pkg/metrics"
)

// Fetch operation labels used in metrics.
const (
	OpFetchRequirements = "fetch_requirements"
	OpFetchEmployees    = "fetch_employees"
)

// Open creates the Source selected by cfg.Kind.
func Open(ctx context.Context, cfg Config, opts ...Option) (Source, error) {
	switch cfg.Kind {
	case KindMemory, "":
		if cfg.FixturesPath == "" {
			return NewMemorySource(nil), nil
		}
		f, err := LoadFixture(cfg.FixturesPath)
		if err != nil {
			return nil, err
		}
		return NewMemorySource(f), nil
	case KindSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case KindPostgres:
		return OpenPostgres(ctx, cfg.DatabaseURL, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Kind)
	}
}

// instrumented records latency and errors of every fetch.
type instrumented struct {
	Source
}

// Instrument wraps a Source with fetch metrics.
func Instrument(src Source) Source {
	if _, ok := src.(instrumented); ok {
		return src
	}
	return instrumented{Source: src}
}

func (i instrumented) FetchProjectRequirements(ctx context.Context, projectID int64) ([]model.Requirement, error) {
	start := time.Now()
	out, err := i.Source.FetchProjectRequirements(ctx, projectID)
	observe(OpFetchRequirements, start, err)
	return out, err
}

func (i instrumented) FetchAllEmployees(ctx context.Context) ([]model.Employee, error) {
	start := time.Now()
	out, err := i.Source.FetchAllEmployees(ctx)
	observe(OpFetchEmployees, start, err)
	return out, err
}

// Import forwards to the wrapped source when it supports seeding.
func (i instrumented) Import(ctx context.Context, f *Fixture) error {
	imp, ok := i.Source.(Importer)
	if !ok {
		return fmt.Errorf("%w: source does not support import", ErrNotConfigured)
	}
	return imp.Import(ctx, f)
}

func observe(op string, start time.Time, err error) {
	metrics.RecordFetchLatency(op, float64(time.Since(start).Nanoseconds())/1e6)
	if err != nil {
		metrics.RecordFetchError(op)
	}
}
