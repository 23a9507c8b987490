package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// IngestTx is the transactional unit backing project ingestion. The project
// row and its staged segments become visible together at Commit; Rollback
// discards both. A finished transaction rejects further calls.
type IngestTx struct {
	tx   *sql.Tx
	done bool
}

// BeginIngest opens a write transaction for staging a new project.
func (s *Store) BeginIngest(ctx context.Context) (*IngestTx, error) {
	ctx = ensureContext(ctx)
	var tx *sql.Tx
	err := retryOnBusy(ctx, func() error {
		var beginErr error
		tx, beginErr = s.db.BeginTx(ctx, nil)
		return beginErr
	})
	if err != nil {
		return nil, fmt.Errorf("begin ingest: %w", err)
	}
	return &IngestTx{tx: tx}, nil
}

// CreateProject stages the project row inside the transaction.
func (t *IngestTx) CreateProject(ctx context.Context, project *Project) error {
	if t.done {
		return fmt.Errorf("ingest transaction already finished")
	}
	ctx = ensureContext(ctx)
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO projects (id, owner_key, original_uri, burned_uri, created_at, updated_at)
		 VALUES (?, ?, ?, NULL, ?, ?)`,
		project.ID, project.OwnerKey, project.OriginalURI,
		timestamp(project.CreatedAt), timestamp(project.UpdatedAt))
	if err != nil {
		return fmt.Errorf("stage project %s: %w", project.ID, err)
	}
	return nil
}

// StageSegments inserts the transcribed segments for the staged project. Each
// segment must satisfy start < end.
func (t *IngestTx) StageSegments(ctx context.Context, projectID string, segments []Segment) error {
	if t.done {
		return fmt.Errorf("ingest transaction already finished")
	}
	ctx = ensureContext(ctx)
	for _, segment := range segments {
		if err := validateSegmentWindow(segment); err != nil {
			return err
		}
	}
	return insertSegments(ctx, t.tx, projectID, segments)
}

// Commit publishes the staged project and segments atomically.
func (t *IngestTx) Commit() error {
	if t.done {
		return fmt.Errorf("ingest transaction already finished")
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit ingest: %w", err)
	}
	return nil
}

// Rollback discards all staged rows. Safe to call after Commit; the rollback
// then has nothing to undo and reports success.
func (t *IngestTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback ingest: %w", err)
	}
	return nil
}
