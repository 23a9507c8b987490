package ingest_test

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"lyricsync/internal/config"
	"lyricsync/internal/ingest"
	"lyricsync/internal/services"
	"lyricsync/internal/storage"
	"lyricsync/internal/store"
	"lyricsync/internal/testsupport"
	"lyricsync/internal/transcribe"
)

type fakeTranscriber struct {
	segments []transcribe.Segment
	err      error
	calls    int
	lastPath string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, sourcePath string) ([]transcribe.Segment, error) {
	f.calls++
	f.lastPath = sourcePath
	if f.err != nil {
		return nil, f.err
	}
	return f.segments, nil
}

type fixture struct {
	cfg      *config.Config
	store    *store.Store
	assets   *storage.Assets
	engine   *fakeTranscriber
	pipeline *ingest.Pipeline
}

func newFixture(t *testing.T, engine *fakeTranscriber) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	assets, err := storage.NewAssets(cfg)
	if err != nil {
		t.Fatalf("NewAssets: %v", err)
	}
	return &fixture{
		cfg:      cfg,
		store:    st,
		assets:   assets,
		engine:   engine,
		pipeline: ingest.NewPipeline(cfg, st, assets, engine, nil),
	}
}

func TestIngestPublishesProjectWithSegments(t *testing.T) {
	engine := &fakeTranscriber{segments: []transcribe.Segment{
		{Seq: 0, Start: 0, End: 1.5, Text: "hello"},
		{Seq: 1, Start: 1.5, End: 3, Text: "world"},
	}}
	f := newFixture(t, engine)

	result, err := f.pipeline.Ingest(context.Background(), "concert.mp4", strings.NewReader("video"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.SegmentCount != 2 {
		t.Fatalf("expected 2 segments, got %d", result.SegmentCount)
	}
	if engine.calls != 1 {
		t.Fatalf("expected one transcription call, got %d", engine.calls)
	}

	project, err := f.store.GetProject(context.Background(), result.ProjectID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if project.OwnerKey != result.OwnerKey {
		t.Fatal("stored owner key must match the returned one")
	}
	if project.OriginalURI != engine.lastPath {
		t.Fatalf("transcription should run against the persisted asset, got %q vs %q",
			engine.lastPath, project.OriginalURI)
	}

	segments, err := f.store.Segments(context.Background(), result.ProjectID)
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if len(segments) != 2 || segments[0].Text != "hello" {
		t.Fatalf("unexpected segments %+v", segments)
	}
}

func TestIngestOwnerKeyFormat(t *testing.T) {
	f := newFixture(t, &fakeTranscriber{})

	result, err := f.pipeline.Ingest(context.Background(), "a.mp4", strings.NewReader("video"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(result.OwnerKey) {
		t.Fatalf("owner key %q must be 32 lowercase hex characters", result.OwnerKey)
	}

	second, err := f.pipeline.Ingest(context.Background(), "b.mp4", strings.NewReader("video"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if second.OwnerKey == result.OwnerKey {
		t.Fatal("owner keys must not repeat")
	}
}

func TestIngestRejectsUnsupportedUploadWithoutSideEffects(t *testing.T) {
	engine := &fakeTranscriber{}
	f := newFixture(t, engine)

	_, err := f.pipeline.Ingest(context.Background(), "payload.txt", strings.NewReader("nope"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if engine.calls != 0 {
		t.Fatal("transcription must not run for rejected uploads")
	}
	assertNoResidue(t, f)
}

func TestIngestRollsBackOnTranscriptionFailure(t *testing.T) {
	engine := &fakeTranscriber{err: services.Wrap(services.ErrTranscription, "transcribe", "openai request", "", errors.New("rate limited"))}
	f := newFixture(t, engine)

	_, err := f.pipeline.Ingest(context.Background(), "clip.mp4", strings.NewReader("video"))
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
	assertNoResidue(t, f)
}

func TestIngestRollsBackOnInvalidSegmentWindow(t *testing.T) {
	engine := &fakeTranscriber{segments: []transcribe.Segment{{Seq: 0, Start: 3, End: 1, Text: "backwards"}}}
	f := newFixture(t, engine)

	_, err := f.pipeline.Ingest(context.Background(), "clip.mp4", strings.NewReader("video"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	assertNoResidue(t, f)
}

// assertNoResidue verifies a failed ingest left neither assets nor rows.
func assertNoResidue(t *testing.T, f *fixture) {
	t.Helper()
	leftovers, err := filepath.Glob(filepath.Join(f.cfg.Paths.UploadDir, "*"))
	if err != nil {
		t.Fatalf("glob uploads: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("expected upload dir to be empty, found %v", leftovers)
	}
}
