package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/staffwise/internal/domain/model"
)

// Rows are read as jsonb so that columns missing from a deployment's schema
// simply decode as absent fields.
const (
	pgRequirementsQuery = `SELECT to_jsonb(r) FROM project_requirements r WHERE r.project_id = $1 ORDER BY r.id`
	pgEmployeesQuery    = `SELECT to_jsonb(u) FROM user_details u ORDER BY u.id`

	defaultMaxConns = 10
	defaultMinConns = 2
)

// PostgresSource reads rows from PostgreSQL through a pgx connection pool.
type PostgresSource struct {
	pool     *pgxpool.Pool
	maxConns int32
	minConns int32
}

// OpenPostgres connects to the database and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*PostgresSource, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: database url is empty", ErrNotConfigured)
	}
	s := &PostgresSource{
		maxConns: defaultMaxConns,
		minConns: defaultMinConns,
	}
	for _, opt := range opts {
		opt(s)
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = s.maxConns
	poolCfg.MinConns = min(s.minConns, s.maxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s.pool = pool
	return s, nil
}

// FetchProjectRequirements implements Source.
func (s *PostgresSource) FetchProjectRequirements(ctx context.Context, projectID int64) ([]model.Requirement, error) {
	rows, err := s.pool.Query(ctx, pgRequirementsQuery, projectID)
	if err != nil {
		return nil, fmt.Errorf("query project requirements: %w", err)
	}
	defer rows.Close()

	out := make([]model.Requirement, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan project requirement: %w", err)
		}
		req, err := decodeRequirementJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("decode project requirement: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project requirements: %w", err)
	}
	return out, nil
}

// FetchAllEmployees implements Source.
func (s *PostgresSource) FetchAllEmployees(ctx context.Context) ([]model.Employee, error) {
	rows, err := s.pool.Query(ctx, pgEmployeesQuery)
	if err != nil {
		return nil, fmt.Errorf("query user details: %w", err)
	}
	defer rows.Close()

	out := make([]model.Employee, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan user details: %w", err)
		}
		emp, err := decodeEmployeeJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("decode user details: %w", err)
		}
		out = append(out, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user details: %w", err)
	}
	return out, nil
}

// Close implements Source.
func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}
