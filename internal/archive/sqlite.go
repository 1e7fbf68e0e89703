// Package archive persists completed report runs into a local SQLite
// database so accuracy can be compared across data releases.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
)

// SQLiteStore implements the run archive using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite run archive.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		primary_classifier TEXT NOT NULL,
		samples INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS run_accuracy (
		run_id TEXT NOT NULL REFERENCES runs(id),
		classifier TEXT NOT NULL,
		accuracy_pct TEXT NOT NULL DEFAULT '',
		evaluated INTEGER NOT NULL DEFAULT 0,
		matched INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, classifier)
	);

	CREATE TABLE IF NOT EXISTS run_final (
		run_id TEXT NOT NULL REFERENCES runs(id),
		participant_id TEXT NOT NULL,
		sample_id TEXT NOT NULL,
		dna_biospecimen_id TEXT NOT NULL DEFAULT '',
		rna_biospecimen_id TEXT NOT NULL,
		molecular_subtype TEXT NOT NULL,
		PRIMARY KEY (run_id, rna_biospecimen_id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_run_final_sample ON run_final(sample_id);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveRun stores one completed run with its per-classifier accuracy and the
// final export rows. Returns the assigned run id.
func (s *SQLiteStore) SaveRun(ctx context.Context, primary string, results []domain.ClassifierResult, export []domain.FinalExportRecord) (*domain.RunRecord, error) {
	run := &domain.RunRecord{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		Primary:    primary,
		Accuracies: make(map[string]string, len(results)),
		Samples:    len(export),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, created_at, primary_classifier, samples) VALUES (?, ?, ?, ?)",
		run.ID, run.CreatedAt, run.Primary, run.Samples,
	); err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	for _, r := range results {
		run.Accuracies[r.Classifier] = r.AccuracyPct
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_accuracy (run_id, classifier, accuracy_pct, evaluated, matched)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, r.Classifier, r.AccuracyPct, r.Evaluated, r.Matched); err != nil {
			return nil, fmt.Errorf("failed to insert accuracy for %s: %w", r.Classifier, err)
		}
	}

	for _, row := range export {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_final (run_id, participant_id, sample_id, dna_biospecimen_id, rna_biospecimen_id, molecular_subtype)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, row.ParticipantID, row.SampleID, row.DNABiospecimenID, row.RNABiospecimenID, row.MolecularSubtype); err != nil {
			return nil, fmt.Errorf("failed to insert final row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}

// ListRuns returns archived runs, most recent first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, primary_classifier, samples
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var result []*domain.RunRecord
	for rows.Next() {
		run := &domain.RunRecord{Accuracies: make(map[string]string)}
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.Primary, &run.Samples); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		result = append(result, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, run := range result {
		if err := s.loadAccuracies(ctx, run); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// GetRun retrieves one run by id, or nil when unknown.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*domain.RunRecord, error) {
	run := &domain.RunRecord{Accuracies: make(map[string]string)}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, created_at, primary_classifier, samples FROM runs WHERE id = ?", id,
	).Scan(&run.ID, &run.CreatedAt, &run.Primary, &run.Samples)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	if err := s.loadAccuracies(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// GetFinalRows returns the archived final export rows of one run.
func (s *SQLiteStore) GetFinalRows(ctx context.Context, runID string) ([]domain.FinalExportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT participant_id, sample_id, dna_biospecimen_id, rna_biospecimen_id, molecular_subtype
		FROM run_final
		WHERE run_id = ?
		ORDER BY rna_biospecimen_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query final rows: %w", err)
	}
	defer rows.Close()

	var result []domain.FinalExportRecord
	for rows.Next() {
		var r domain.FinalExportRecord
		if err := rows.Scan(&r.ParticipantID, &r.SampleID, &r.DNABiospecimenID, &r.RNABiospecimenID, &r.MolecularSubtype); err != nil {
			return nil, fmt.Errorf("failed to scan final row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// LatestRun returns the most recent archived run, or nil when the archive is
// empty.
func (s *SQLiteStore) LatestRun(ctx context.Context) (*domain.RunRecord, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// loadAccuracies fills the per-classifier accuracy map of a run.
func (s *SQLiteStore) loadAccuracies(ctx context.Context, run *domain.RunRecord) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT classifier, accuracy_pct FROM run_accuracy WHERE run_id = ?", run.ID)
	if err != nil {
		return fmt.Errorf("failed to query accuracies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var classifier, pct string
		if err := rows.Scan(&classifier, &pct); err != nil {
			return fmt.Errorf("failed to scan accuracy: %w", err)
		}
		run.Accuracies[classifier] = pct
	}
	return rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
