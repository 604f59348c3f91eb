// Package repository persists analysis runs in a local SQLite database.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/common"
	"github.com/autoesg/analyzer/internal/entity"
)

const schemaVersionV1 = 1

const schemaV1 = `
CREATE TABLE schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE runs (
	id             TEXT PRIMARY KEY,
	status         TEXT NOT NULL,
	rubric_version TEXT NOT NULL,
	started_at     TEXT NOT NULL,
	finished_at    TEXT,
	report_json    TEXT,
	narrative      TEXT,
	error_message  TEXT,
	model_name     TEXT
);

CREATE INDEX idx_runs_started_at ON runs(started_at);
`

// RunStore keeps the history of analysis runs so a degraded or failed
// run leaves a record next to the successful ones.
type RunStore struct {
	db *sql.DB
}

// Open opens or creates the SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .analyzer) if it does not exist.
func Open(path string) (*RunStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &RunStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *RunStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersionV1); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}

	var v int
	if err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != schemaVersionV1 {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Close closes the database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts the run, or replaces the row when the run ID already
// exists. A run is saved once at start (RUNNING) and again at finish.
func (s *RunStore) SaveRun(ctx context.Context, run *entity.AnalysisRun) error {
	if run == nil {
		return errors.New("run is nil")
	}
	var finishedAt any
	if run.FinishedAt != nil {
		finishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	var reportJSON any
	if len(run.ReportJSON) > 0 {
		reportJSON = string(run.ReportJSON)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs(id, status, rubric_version, started_at, finished_at,
		                             report_json, narrative, error_message, model_name)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), string(run.Status), run.RubricVersion,
		run.StartedAt.UTC().Format(time.RFC3339), finishedAt,
		reportJSON, nullable(run.Narrative), nullable(run.ErrorMessage), nullable(run.ModelName),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// GetRun returns the run by ID, or a NOT_FOUND error.
func (s *RunStore) GetRun(ctx context.Context, id uuid.UUID) (*entity.AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, rubric_version, started_at, finished_at,
		        report_json, narrative, error_message, model_name
		 FROM runs WHERE id = ?`,
		id.String(),
	)
	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND",
			fmt.Sprintf("run %s not found", id), common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]*entity.AnalysisRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, rubric_version, started_at, finished_at,
		        report_json, narrative, error_message, model_name
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var list []*entity.AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		list = append(list, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return list, nil
}

func scanRun(scan func(dest ...any) error) (*entity.AnalysisRun, error) {
	var (
		run        entity.AnalysisRun
		idStr      string
		status     string
		startedAt  string
		finishedAt sql.NullString
		reportJSON sql.NullString
		narrative  sql.NullString
		errMsg     sql.NullString
		modelName  sql.NullString
	)
	if err := scan(&idStr, &status, &run.RubricVersion, &startedAt, &finishedAt,
		&reportJSON, &narrative, &errMsg, &modelName); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse run id %q: %w", idStr, err)
	}
	run.ID = id
	run.Status = constants.RunStatus(status)

	run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	if finishedAt.Valid {
		t, err := time.Parse(time.RFC3339, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at %q: %w", finishedAt.String, err)
		}
		run.FinishedAt = &t
	}
	if reportJSON.Valid {
		run.ReportJSON = json.RawMessage(reportJSON.String)
	}
	run.Narrative = strPtr(narrative)
	run.ErrorMessage = strPtr(errMsg)
	run.ModelName = strPtr(modelName)
	return &run, nil
}

func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
