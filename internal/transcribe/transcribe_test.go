package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lyricsync/internal/services"
	"lyricsync/internal/testsupport"
)

func TestNewSelectsEngine(t *testing.T) {
	openaiCfg := testsupport.NewConfig(t)
	engine, err := New(openaiCfg)
	if err != nil {
		t.Fatalf("New(openai): %v", err)
	}
	if _, ok := engine.(*openAIEngine); !ok {
		t.Fatalf("expected openai engine, got %T", engine)
	}

	whisperCfg := testsupport.NewConfig(t, testsupport.WithEngine("whisper"))
	engine, err = New(whisperCfg)
	if err != nil {
		t.Fatalf("New(whisper): %v", err)
	}
	if _, ok := engine.(*whisperEngine); !ok {
		t.Fatalf("expected whisper engine, got %T", engine)
	}
}

func TestNewRejectsUnknownEngine(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Transcription.Engine = "parakeet"
	if _, err := New(cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestCleanText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"leading pad", " Hello world", "Hello world"},
		{"collapses runs", "one\t\ttwo \n three", "one two three"},
		{"strips control", "a\x00b\x07c", "a b c"},
		{"strips zero width", "a\u200bb\ufeffc", "a b c"},
		{"empty after cleaning", " \u200b \t ", ""},
		{"nfc normalization", "café", "café"},
	}
	for _, tc := range cases {
		if got := CleanText(tc.in); got != tc.want {
			t.Errorf("%s: CleanText(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestFinalizeDropsEmptySegments(t *testing.T) {
	segments := finalize([]Segment{
		{Seq: 0, Start: 0, End: 1, Text: " keep me "},
		{Seq: 1, Start: 1, End: 2, Text: "  \u200b "},
		{Seq: 2, Start: 2, End: 3, Text: "also kept"},
	})
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segments), segments)
	}
	if segments[0].Text != "keep me" || segments[1].Text != "also kept" {
		t.Fatalf("unexpected cleaned text: %+v", segments)
	}
	if segments[0].Seq != 0 || segments[1].Seq != 2 {
		t.Fatalf("seq values must survive filtering: %+v", segments)
	}
}

func TestParseWhisperOutputPreservesIDs(t *testing.T) {
	payload := []byte(`{"segments":[
		{"id":4,"start":0.0,"end":2.5,"text":" first"},
		{"id":7,"start":2.5,"end":4.0,"text":" second"}
	]}`)
	segments, err := parseWhisperOutput(payload)
	if err != nil {
		t.Fatalf("parseWhisperOutput: %v", err)
	}
	if segments[0].Seq != 4 || segments[1].Seq != 7 {
		t.Fatalf("expected engine ids preserved, got %+v", segments)
	}
}

func TestParseWhisperOutputFallsBackToOrdinals(t *testing.T) {
	payload := []byte(`{"segments":[
		{"start":0.0,"end":2.5,"text":"first"},
		{"start":2.5,"end":4.0,"text":"second"}
	]}`)
	segments, err := parseWhisperOutput(payload)
	if err != nil {
		t.Fatalf("parseWhisperOutput: %v", err)
	}
	if segments[0].Seq != 0 || segments[1].Seq != 1 {
		t.Fatalf("expected array ordinals, got %+v", segments)
	}
}

func TestWhisperEngineTranscribe(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithEngine("whisper"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	engine := newWhisperEngine(cfg)
	engine.run = func(ctx context.Context, name string, args ...string) error {
		switch name {
		case cfg.Tools.FFmpegBinary:
			// Last arg is the WAV destination.
			return os.WriteFile(args[len(args)-1], []byte("RIFF"), 0o644)
		case cfg.Transcription.WhisperBinary:
			var outputDir, input string
			input = args[0]
			for i, arg := range args {
				if arg == "--output_dir" && i+1 < len(args) {
					outputDir = args[i+1]
				}
			}
			base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			payload := `{"segments":[{"id":0,"start":0,"end":1.5,"text":" hello"},{"start":1.5,"end":3,"text":" world "}]}`
			return os.WriteFile(filepath.Join(outputDir, base+".json"), []byte(payload), 0o644)
		default:
			t.Fatalf("unexpected command %s", name)
			return nil
		}
	}

	segments, err := engine.Transcribe(context.Background(), filepath.Join(cfg.Paths.UploadDir, "proj.mp4"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != "hello" || segments[1].Text != "world" {
		t.Fatalf("unexpected text: %+v", segments)
	}
	if segments[1].Seq != 1 {
		t.Fatalf("expected ordinal fallback for missing id, got %d", segments[1].Seq)
	}
}

func TestWhisperEngineWrapsToolFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithEngine("whisper"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	engine := newWhisperEngine(cfg)
	engine.run = func(ctx context.Context, name string, args ...string) error {
		return errors.New("boom")
	}

	if _, err := engine.Transcribe(context.Background(), "input.mp4"); !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
}
