// Package store persists fetched documents in a local SQLite database
// so a batch can be re-inspected without refetching from Box. Each
// save is tagged with a caller-supplied run ID.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/arikorhonen/boxtext/internal/loader"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a document archive backed by a single SQLite file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies any
// pending schema migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}

	// Sole-writer: a single connection avoids SQLITE_BUSY under the
	// strictly sequential write pattern.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()

		return nil, err
	}

	return &Store{db: db, logger: logger}, nil
}

// runMigrations applies all pending schema migrations. Uses the goose
// v3 Provider API (no global state, context-aware).
func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	subFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: creating migration sub-filesystem: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, subFS)
	if err != nil {
		return fmt.Errorf("store: creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("store: running migrations: %w", err)
	}

	for _, r := range results {
		logger.Info("applied migration",
			slog.String("source", r.Source.Path),
			slog.Int64("duration_ms", r.Duration.Milliseconds()),
		)
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDocuments inserts all documents in a single transaction under
// the given run ID.
func (s *Store) SaveDocuments(ctx context.Context, runID string, docs []loader.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents
			(run_id, file_id, file_name, file_type, file_size,
			 created_at, modified_at, box_url, content, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	fetchedAt := time.Now().UTC().Format(time.RFC3339)

	for i := range docs {
		d := &docs[i]
		m := &d.Metadata

		if _, err := stmt.ExecContext(ctx,
			runID, m.FileID, m.FileName, m.FileType, m.FileSize,
			m.CreatedAt, m.ModifiedAt, m.BoxURL, d.Content, fetchedAt,
		); err != nil {
			return fmt.Errorf("store: inserting document %s: %w", m.FileID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit save: %w", err)
	}

	s.logger.Info("saved documents",
		slog.String("run_id", runID),
		slog.Int("count", len(docs)),
	)

	return nil
}

// CountByRun returns how many documents were saved under a run ID.
func (s *Store) CountByRun(ctx context.Context, runID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE run_id = ?`, runID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: counting run %s: %w", runID, err)
	}

	return n, nil
}
