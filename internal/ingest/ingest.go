package ingest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"lyricsync/internal/config"
	"lyricsync/internal/logging"
	"lyricsync/internal/services"
	"lyricsync/internal/storage"
	"lyricsync/internal/store"
	"lyricsync/internal/transcribe"
)

// Result describes a successfully ingested project. OwnerKey is returned
// exactly once; it is the caller's only credential for later operations.
type Result struct {
	ProjectID    string
	OwnerKey     string
	SegmentCount int
}

// Pipeline ingests an uploaded video: it persists the asset, transcribes it,
// and publishes the project with its segments in one transaction. A failure
// at any point after the asset lands rolls the record back and removes the
// asset, so a project is either fully visible or absent.
type Pipeline struct {
	cfg         *config.Config
	store       *store.Store
	assets      *storage.Assets
	transcriber transcribe.Transcriber
	logger      *slog.Logger
}

// NewPipeline constructs the ingestion pipeline.
func NewPipeline(cfg *config.Config, st *store.Store, assets *storage.Assets, transcriber transcribe.Transcriber, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{cfg: cfg, store: st, assets: assets, transcriber: transcriber, logger: logger}
}

// Ingest runs the full pipeline for one upload. The filename contributes only
// its extension.
func (p *Pipeline) Ingest(ctx context.Context, filename string, body io.Reader) (*Result, error) {
	projectID := uuid.NewString()
	ownerKey, err := newOwnerKey()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "ingest", "allocate owner key", "", err)
	}

	ctx = services.WithStage(services.WithProjectID(ctx, projectID), "ingest")
	log := logging.WithContext(ctx, p.logger)

	assetPath, err := p.assets.SaveUpload(projectID, filename, body)
	if err != nil {
		return nil, err
	}
	log.Debug("persisted upload", slog.String("asset", assetPath))

	result, err := p.stageAndCommit(ctx, log, projectID, ownerKey, assetPath)
	if err != nil {
		p.discardAsset(log, assetPath)
		return nil, err
	}
	log.Info("ingested project", slog.Int("segments", result.SegmentCount))
	return result, nil
}

func (p *Pipeline) stageAndCommit(ctx context.Context, log *slog.Logger, projectID, ownerKey, assetPath string) (*Result, error) {
	tx, err := p.store.BeginIngest(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "ingest", "open record", projectID, err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn("rollback failed", slog.Any("error", rbErr))
		}
	}()

	project := &store.Project{ID: projectID, OwnerKey: ownerKey, OriginalURI: assetPath}
	if err := tx.CreateProject(ctx, project); err != nil {
		return nil, services.Wrap(services.ErrTransient, "ingest", "open record", projectID, err)
	}

	segments, err := p.transcriber.Transcribe(ctx, assetPath)
	if err != nil {
		return nil, err
	}
	log.Debug("transcription complete", slog.Int("segments", len(segments)))

	staged := make([]store.Segment, 0, len(segments))
	for _, segment := range segments {
		staged = append(staged, store.Segment{
			ProjectID: projectID,
			Seq:       segment.Seq,
			Start:     segment.Start,
			End:       segment.End,
			Text:      segment.Text,
		})
	}
	if err := tx.StageSegments(ctx, projectID, staged); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "ingest", "commit record", projectID, err)
	}
	return &Result{ProjectID: projectID, OwnerKey: ownerKey, SegmentCount: len(staged)}, nil
}

// discardAsset removes a persisted upload after a failed ingest. Removal
// failures are logged and swallowed so they never mask the original error.
func (p *Pipeline) discardAsset(log *slog.Logger, assetPath string) {
	if err := p.assets.Remove(assetPath); err != nil {
		log.Warn("failed to remove asset after ingest failure",
			slog.String("asset", assetPath), slog.Any("error", err))
	}
}

// newOwnerKey generates the project's owner credential: 32 hex characters
// from a cryptographic source.
func newOwnerKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
