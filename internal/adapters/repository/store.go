// Package repository reads project requirements and the employee snapshot
// from the configured backing store.
package repository

import (
	"context"

	"github.com/okian/staffwise/internal/domain/model"
)

// Source kinds accepted by Open.
const (
	KindMemory   = "memory"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
)

// Source provides read access to staffing data. Implementations return rows
// in a stable order so that repeated calls on unchanged data rank identically.
type Source interface {
	// FetchProjectRequirements returns every requirement row of a project.
	// An unknown project yields an empty slice, not an error.
	FetchProjectRequirements(ctx context.Context, projectID int64) ([]model.Requirement, error)

	// FetchAllEmployees returns the full employee snapshot.
	FetchAllEmployees(ctx context.Context) ([]model.Employee, error)

	// Close releases any underlying connections.
	Close() error
}

// Importer is implemented by sources that can be seeded from a fixture.
type Importer interface {
	Import(ctx context.Context, f *Fixture) error
}
