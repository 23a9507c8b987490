package render

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"lyricsync/internal/media/ffprobe"
	"lyricsync/internal/services"
	"lyricsync/internal/storage"
	"lyricsync/internal/store"
	"lyricsync/internal/testsupport"
)

type fixture struct {
	pipeline *Pipeline
	store    *store.Store
	assets   *storage.Assets
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	assets, err := storage.NewAssets(cfg)
	if err != nil {
		t.Fatalf("NewAssets: %v", err)
	}
	pipeline := NewPipeline(cfg, st, assets, nil)
	pipeline.probe = func(ctx context.Context, binary, path string) (ffprobe.Resolution, error) {
		return ffprobe.Resolution{Width: 1280, Height: 720}, nil
	}
	pipeline.encode = func(ctx context.Context, name string, args ...string) error {
		// Last arg is the output path.
		return os.WriteFile(args[len(args)-1], []byte("encoded"), 0o644)
	}
	return &fixture{pipeline: pipeline, store: st, assets: assets}
}

func (f *fixture) seedProject(t *testing.T, segments []store.Segment) {
	t.Helper()
	testsupport.NewProject(t, f.store, "proj-1", "key", "ignored")
	if _, err := f.assets.SaveUpload("proj-1", "clip.mp4", strings.NewReader("source bytes")); err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	if len(segments) > 0 {
		if err := f.store.ReplaceSegments(context.Background(), "proj-1", segments); err != nil {
			t.Fatalf("ReplaceSegments: %v", err)
		}
	}
}

func TestBurnProducesOutputAndRecordsURI(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t, []store.Segment{
		{Seq: 0, Start: 0, End: 2, Text: "hello"},
		{Seq: 1, Start: 2, End: 4, Text: "world"},
	})

	output, err := f.pipeline.Burn(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("Burn: %v", err)
	}
	if !strings.HasSuffix(output, "proj-1_burned.mp4") {
		t.Fatalf("unexpected output path %q", output)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output missing: %v", err)
	}

	project, err := f.store.GetProject(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if project.BurnedURI != output {
		t.Fatalf("expected burned uri %q, got %q", output, project.BurnedURI)
	}
}

func TestBurnCompilesDocumentAgainstProbedResolution(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t, []store.Segment{{Seq: 0, Start: 0, End: 2, Text: "hello"}})

	var captured, filter string
	f.pipeline.encode = func(ctx context.Context, name string, args ...string) error {
		for i, arg := range args {
			if arg == "-vf" && i+1 < len(args) {
				filter = args[i+1]
				subtitlePath := strings.TrimPrefix(args[i+1], "subtitles='")
				subtitlePath = subtitlePath[:strings.Index(subtitlePath, "'")]
				content, err := os.ReadFile(subtitlePath)
				if err != nil {
					t.Fatalf("read scratch document: %v", err)
				}
				captured = string(content)
			}
		}
		return os.WriteFile(args[len(args)-1], []byte("encoded"), 0o644)
	}

	if _, err := f.pipeline.Burn(context.Background(), "proj-1"); err != nil {
		t.Fatalf("Burn: %v", err)
	}
	for _, want := range []string{"PlayResX: 1280", "PlayResY: 720", "hello"} {
		if !strings.Contains(captured, want) {
			t.Fatalf("scratch document missing %q:\n%s", want, captured)
		}
	}
	if !strings.HasSuffix(filter, ",scale=1280:720") {
		t.Fatalf("expected filter to pin the source resolution, got %q", filter)
	}
}

func TestBurnAppliesStoredStyle(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t, []store.Segment{{Seq: 0, Start: 0, End: 2, Text: "hello"}})
	style := []byte(`{"fontFamily":"Roboto","fontSizePx":40,"rotation":10}`)
	if err := f.store.SetStyleDocument(context.Background(), "proj-1", style); err != nil {
		t.Fatalf("SetStyleDocument: %v", err)
	}

	document, err := f.pipeline.CompileDocument(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("CompileDocument: %v", err)
	}
	if !strings.Contains(document, "Roboto,40") {
		t.Fatalf("expected styled header:\n%s", document)
	}
	if !strings.Contains(document, `\frz10`) {
		t.Fatalf("expected rotation override:\n%s", document)
	}
}

func TestBurnFailsWithoutVisibleCues(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t, nil)

	if _, err := f.pipeline.Burn(context.Background(), "proj-1"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty cue set, got %v", err)
	}
}

func TestBurnWrapsProbeFailure(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t, []store.Segment{{Seq: 0, Start: 0, End: 2, Text: "hello"}})
	f.pipeline.probe = func(ctx context.Context, binary, path string) (ffprobe.Resolution, error) {
		return ffprobe.Resolution{}, errors.New("no video stream found")
	}

	if _, err := f.pipeline.Burn(context.Background(), "proj-1"); !errors.Is(err, services.ErrProbe) {
		t.Fatalf("expected ErrProbe, got %v", err)
	}
}

func TestBurnWrapsEncoderFailure(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t, []store.Segment{{Seq: 0, Start: 0, End: 2, Text: "hello"}})
	f.pipeline.encode = func(ctx context.Context, name string, args ...string) error {
		return errors.New("exit status 1: filter parse failure")
	}

	if _, err := f.pipeline.Burn(context.Background(), "proj-1"); !errors.Is(err, services.ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
}

func TestBurnFailsWhenEncoderProducesNothing(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t, []store.Segment{{Seq: 0, Start: 0, End: 2, Text: "hello"}})
	f.pipeline.encode = func(ctx context.Context, name string, args ...string) error {
		return nil
	}

	if _, err := f.pipeline.Burn(context.Background(), "proj-1"); !errors.Is(err, services.ErrEncode) {
		t.Fatalf("expected ErrEncode for missing artifact, got %v", err)
	}
}

func TestBurnMissingProject(t *testing.T) {
	f := newFixture(t)

	if _, err := f.pipeline.Burn(context.Background(), "ghost"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEscapeFilterPath(t *testing.T) {
	got := escapeFilterPath(`/tmp/a:b'c\d.ass`)
	want := `'/tmp/a\:b\'c\\d.ass'`
	if got != want {
		t.Fatalf("escapeFilterPath = %q, want %q", got, want)
	}
}
