package repository

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/okian/staffwise/internal/domain/model"
)

// LoadFixture reads a YAML or JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture bytes. JSON is accepted as a subset of YAML.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFixture, err)
	}
	return &f, nil
}

// MemorySource serves rows from an in-memory fixture.
type MemorySource struct {
	mu      sync.RWMutex
	fixture Fixture
}

// NewMemorySource creates a source over a copy of the fixture rows.
func NewMemorySource(f *Fixture) *MemorySource {
	s := &MemorySource{}
	if f != nil {
		s.fixture = copyFixture(f)
	}
	return s
}

// FetchProjectRequirements implements Source.
func (s *MemorySource) FetchProjectRequirements(ctx context.Context, projectID int64) ([]model.Requirement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Requirement, 0)
	for _, row := range s.fixture.ProjectRequirements {
		if row.ProjectID.Valid && int64(row.ProjectID.Value) == projectID {
			out = append(out, row.Requirement())
		}
	}
	return out, nil
}

// FetchAllEmployees implements Source.
func (s *MemorySource) FetchAllEmployees(ctx context.Context) ([]model.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Employee, 0, len(s.fixture.UserDetails))
	for _, row := range s.fixture.UserDetails {
		out = append(out, row.Employee())
	}
	return out, nil
}

// Import implements Importer by appending the fixture rows.
func (s *MemorySource) Import(ctx context.Context, f *Fixture) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("%w: nil fixture", ErrFixture)
	}
	c := copyFixture(f)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixture.ProjectRequirements = append(s.fixture.ProjectRequirements, c.ProjectRequirements...)
	s.fixture.UserDetails = append(s.fixture.UserDetails, c.UserDetails...)
	return nil
}

// Close implements Source.
func (s *MemorySource) Close() error { return nil }

func copyFixture(f *Fixture) Fixture {
	return Fixture{
		ProjectRequirements: append([]RequirementRow(nil), f.ProjectRequirements...),
		UserDetails:         append([]EmployeeRow(nil), f.UserDetails...),
	}
}
