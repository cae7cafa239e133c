package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/okian/staffwise/internal/domain/model"
)

// SQLiteSchema mirrors the two tables the recommender reads.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS project_requirements (
    id                        INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id                INTEGER NOT NULL,
    required_skills           TEXT NOT NULL DEFAULT '[]',
    experience_level          TEXT NOT NULL DEFAULT '',
    quantity_needed           INTEGER NOT NULL DEFAULT 0,
    preferred_assignment_type TEXT NULL
);

CREATE TABLE IF NOT EXISTS user_details (
    seq                   INTEGER PRIMARY KEY AUTOINCREMENT,
    id                    TEXT NOT NULL UNIQUE,
    employee_id           TEXT NULL,
    job_title             TEXT NULL,
    status                TEXT NULL,
    experience_level      TEXT NULL,
    skills                TEXT NULL,
    total_available_hours INTEGER NULL
);

CREATE INDEX IF NOT EXISTS idx_project_requirements_project ON project_requirements(project_id);
`

// SQLiteSource reads rows from a local SQLite database file.
type SQLiteSource struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database file and applies the schema.
func OpenSQLite(path string) (*SQLiteSource, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path is empty", ErrNotConfigured)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if _, err := db.Exec(SQLiteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite db: %w", err)
	}

	return &SQLiteSource{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLiteSource) Path() string { return s.path }

// FetchProjectRequirements implements Source.
func (s *SQLiteSource) FetchProjectRequirements(ctx context.Context, projectID int64) ([]model.Requirement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id, required_skills, experience_level, quantity_needed, preferred_assignment_type
		 FROM project_requirements WHERE project_id = ? ORDER BY id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("query project requirements: %w", err)
	}
	defer rows.Close()

	out := make([]model.Requirement, 0)
	for rows.Next() {
		var (
			pid       int64
			skills    string
			level     string
			qty       int64
			preferred sql.NullString
		)
		if err := rows.Scan(&pid, &skills, &level, &qty, &preferred); err != nil {
			return nil, fmt.Errorf("scan project requirement: %w", err)
		}
		row := RequirementRow{
			ProjectID:               Int(int(pid)),
			RequiredSkills:          ParseSkills(skills),
			ExperienceLevel:         FlexString(level),
			QuantityNeeded:          Int(int(qty)),
			PreferredAssignmentType: FlexString(preferred.String),
		}
		out = append(out, row.Requirement())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project requirements: %w", err)
	}
	return out, nil
}

// FetchAllEmployees implements Source.
func (s *SQLiteSource) FetchAllEmployees(ctx context.Context) ([]model.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, job_title, status, experience_level, skills, total_available_hours
		 FROM user_details ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("query user details: %w", err)
	}
	defer rows.Close()

	out := make([]model.Employee, 0)
	for rows.Next() {
		var (
			id                        string
			employeeID, title, status sql.NullString
			level, skills             sql.NullString
			hours                     sql.NullInt64
		)
		if err := rows.Scan(&id, &employeeID, &title, &status, &level, &skills, &hours); err != nil {
			return nil, fmt.Errorf("scan user details: %w", err)
		}
		row := EmployeeRow{
			ID:              FlexString(id),
			EmployeeID:      FlexString(employeeID.String),
			JobTitle:        FlexString(title.String),
			Status:          FlexString(status.String),
			ExperienceLevel: FlexString(level.String),
			Skills:          ParseSkills(skills.String),
		}
		if hours.Valid {
			row.TotalAvailableHours = Int(int(hours.Int64))
		}
		out = append(out, row.Employee())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user details: %w", err)
	}
	return out, nil
}

// Import implements Importer. Employees are upserted by id; requirements are
// appended. All rows are written in one transaction.
func (s *SQLiteSource) Import(ctx context.Context, f *Fixture) error {
	if f == nil {
		return fmt.Errorf("%w: nil fixture", ErrFixture)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i, r := range f.ProjectRequirements {
		if !r.ProjectID.Valid {
			return fmt.Errorf("%w: project requirement %d has no project_id", ErrFixture, i)
		}
		req := r.Requirement()
		skills, err := json.Marshal(req.RequiredSkills)
		if err != nil {
			return fmt.Errorf("encode required skills: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_requirements (project_id, required_skills, experience_level, quantity_needed, preferred_assignment_type)
			 VALUES (?, ?, ?, ?, ?)`,
			req.ProjectID, string(skills), string(req.ExperienceLevel), req.QuantityNeeded, nullString(string(r.PreferredAssignmentType)),
		); err != nil {
			return fmt.Errorf("insert project requirement: %w", err)
		}
	}

	for i, e := range f.UserDetails {
		if e.ID == "" {
			return fmt.Errorf("%w: user %d has no id", ErrFixture, i)
		}
		var skills sql.NullString
		if e.Skills != nil {
			b, err := json.Marshal([]string(e.Skills))
			if err != nil {
				return fmt.Errorf("encode skills: %w", err)
			}
			skills = sql.NullString{String: string(b), Valid: true}
		}
		var hours sql.NullInt64
		if e.TotalAvailableHours.Valid {
			hours = sql.NullInt64{Int64: int64(e.TotalAvailableHours.Value), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_details (id, employee_id, job_title, status, experience_level, skills, total_available_hours)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			     employee_id = excluded.employee_id,
			     job_title = excluded.job_title,
			     status = excluded.status,
			     experience_level = excluded.experience_level,
			     skills = excluded.skills,
			     total_available_hours = excluded.total_available_hours`,
			string(e.ID), nullString(string(e.EmployeeID)), nullString(string(e.JobTitle)), nullString(string(e.Status)),
			nullString(string(e.ExperienceLevel)), skills, hours,
		); err != nil {
			return fmt.Errorf("insert user details: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Close implements Source.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
