// Package store persists trained artifacts and evaluation reports in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sbrown5x/Final-Project/pkg/model"
)

// SQLiteStore provides SQLite-based persistence for model artifacts and the
// evaluation reports produced by pipeline runs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writes; a small pool is enough.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		family TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		data TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_run_id ON artifacts(run_id);

	CREATE TABLE IF NOT EXISTS evaluations (
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		artifact_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		data TEXT NOT NULL,
		PRIMARY KEY (run_id, name),
		FOREIGN KEY (artifact_id) REFERENCES artifacts(id)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveArtifact stores a trained artifact under the run that produced it.
func (s *SQLiteStore) SaveArtifact(runID string, artifact *model.Artifact) error {
	data, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO artifacts (id, run_id, family, created_at, data)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query, artifact.ID, runID, artifact.Family, artifact.CreatedAt, string(data))
	if err != nil {
		return fmt.Errorf("failed to save artifact: %w", err)
	}
	return nil
}

// GetArtifact retrieves an artifact by ID, fully deserialized and ready to
// score new data.
func (s *SQLiteStore) GetArtifact(id string) (*model.Artifact, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM artifacts WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("artifact not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}

	var artifact model.Artifact
	if err := json.Unmarshal([]byte(data), &artifact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
	}
	return &artifact, nil
}

// ListArtifacts lists the artifacts of one run, newest first.
func (s *SQLiteStore) ListArtifacts(runID string) ([]*model.Artifact, error) {
	rows, err := s.db.Query(`SELECT data FROM artifacts WHERE run_id = ? ORDER BY created_at DESC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := make([]*model.Artifact, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		var artifact model.Artifact
		if err := json.Unmarshal([]byte(data), &artifact); err != nil {
			return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
		}
		artifacts = append(artifacts, &artifact)
	}
	return artifacts, rows.Err()
}

// SaveEvaluation stores one named evaluation report for a run. The name
// identifies the slice scored, for example "test/logistic" or "year/2022".
func (s *SQLiteStore) SaveEvaluation(runID, name, artifactID string, report *model.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO evaluations (run_id, name, artifact_id, created_at, data)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query, runID, name, artifactID, time.Now().UTC(), string(data))
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

// ListEvaluations returns the evaluation reports of one run keyed by name.
func (s *SQLiteStore) ListEvaluations(runID string) (map[string]*model.Report, error) {
	rows, err := s.db.Query(`SELECT name, data FROM evaluations WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	reports := make(map[string]*model.Report)
	for rows.Next() {
		var name, data string
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		var report model.Report
		if err := json.Unmarshal([]byte(data), &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evaluation: %w", err)
		}
		reports[name] = &report
	}
	return reports, rows.Err()
}
