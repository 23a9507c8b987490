package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lyricsync/internal/services"
)

// CreateProject inserts a new project record. Timestamps are assigned here.
func (s *Store) CreateProject(ctx context.Context, project *Project) error {
	ctx = ensureContext(ctx)
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := s.execWithRetry(ctx,
		`INSERT INTO projects (id, owner_key, original_uri, burned_uri, created_at, updated_at)
		 VALUES (?, ?, ?, NULLIF(?, ''), ?, ?)`,
		project.ID, project.OwnerKey, project.OriginalURI, project.BurnedURI,
		timestamp(project.CreatedAt), timestamp(project.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert project %s: %w", project.ID, err)
	}
	return nil
}

// GetProject loads a project by id. A missing row yields services.ErrNotFound.
func (s *Store) GetProject(ctx context.Context, projectID string) (*Project, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_key, original_uri, COALESCE(burned_uri, ''), created_at, updated_at
		 FROM projects WHERE id = ?`, projectID)

	var (
		project            Project
		createdAt, updated string
	)
	err := row.Scan(&project.ID, &project.OwnerKey, &project.OriginalURI, &project.BurnedURI, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "get project", projectID, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}
	project.CreatedAt = parseTimestamp(createdAt)
	project.UpdatedAt = parseTimestamp(updated)
	return &project, nil
}

// Segments returns a project's segments ordered by start time, then seq for
// identical starts.
func (s *Store) Segments(ctx context.Context, projectID string) ([]Segment, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id, seq, start_sec, end_sec, text
		 FROM segments WHERE project_id = ? ORDER BY start_sec, seq`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query segments for %s: %w", projectID, err)
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var segment Segment
		if err := rows.Scan(&segment.ProjectID, &segment.Seq, &segment.Start, &segment.End, &segment.Text); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, segment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return segments, nil
}

// ReplaceSegments swaps the project's entire segment set atomically. Each
// incoming segment must satisfy start < end; a violation aborts the whole
// replacement with a validation error and leaves the stored set untouched.
func (s *Store) ReplaceSegments(ctx context.Context, projectID string, segments []Segment) error {
	ctx = ensureContext(ctx)
	for _, segment := range segments {
		if err := validateSegmentWindow(segment); err != nil {
			return err
		}
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin segment replace: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM segments WHERE project_id = ?", projectID); err != nil {
			return fmt.Errorf("clear segments for %s: %w", projectID, err)
		}
		if err := insertSegments(ctx, tx, projectID, segments); err != nil {
			return err
		}
		if err := touchProject(ctx, tx, projectID); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit segment replace: %w", err)
		}
		return nil
	})
}

// StyleDocument returns the project's stored style attributes as raw JSON, or
// nil when the project has never saved a style.
func (s *Store) StyleDocument(ctx context.Context, projectID string) ([]byte, error) {
	ctx = ensureContext(ctx)
	var document string
	err := s.db.QueryRowContext(ctx,
		"SELECT document FROM styles WHERE project_id = ?", projectID).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load style for %s: %w", projectID, err)
	}
	return []byte(document), nil
}

// SetStyleDocument stores the project's style attributes, replacing any
// previous document. The payload is opaque to the store.
func (s *Store) SetStyleDocument(ctx context.Context, projectID string, document []byte) error {
	ctx = ensureContext(ctx)
	_, err := s.execWithRetry(ctx,
		`INSERT INTO styles (project_id, document, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(project_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		projectID, string(document), timestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("store style for %s: %w", projectID, err)
	}
	return nil
}

// SetBurnedURI records where the rendered output landed.
func (s *Store) SetBurnedURI(ctx context.Context, projectID, burnedURI string) error {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx,
		"UPDATE projects SET burned_uri = ?, updated_at = ? WHERE id = ?",
		burnedURI, timestamp(time.Now()), projectID)
	if err != nil {
		return fmt.Errorf("record burned output for %s: %w", projectID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return services.Wrap(services.ErrNotFound, "store", "set burned uri", projectID, nil)
	}
	return nil
}

// DeleteProject removes the project row; segments and the style document go
// with it through the cascade.
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, "DELETE FROM projects WHERE id = ?", projectID)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", projectID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return services.Wrap(services.ErrNotFound, "store", "delete project", projectID, nil)
	}
	return nil
}

func validateSegmentWindow(segment Segment) error {
	if segment.Start >= segment.End {
		return services.Wrap(services.ErrValidation, "store", "segment window",
			fmt.Sprintf("segment %d: start %.3f must precede end %.3f", segment.Seq, segment.Start, segment.End), nil)
	}
	return nil
}

func insertSegments(ctx context.Context, tx *sql.Tx, projectID string, segments []Segment) error {
	if len(segments) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO segments (project_id, seq, start_sec, end_sec, text) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, seq) DO UPDATE SET
		   start_sec = excluded.start_sec, end_sec = excluded.end_sec, text = excluded.text`)
	if err != nil {
		return fmt.Errorf("prepare segment insert: %w", err)
	}
	defer stmt.Close()

	for _, segment := range segments {
		if _, err := stmt.ExecContext(ctx, projectID, segment.Seq, segment.Start, segment.End, segment.Text); err != nil {
			return fmt.Errorf("insert segment %d for %s: %w", segment.Seq, projectID, err)
		}
	}
	return nil
}

func touchProject(ctx context.Context, tx *sql.Tx, projectID string) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE projects SET updated_at = ? WHERE id = ?", timestamp(time.Now()), projectID); err != nil {
		return fmt.Errorf("touch project %s: %w", projectID, err)
	}
	return nil
}
