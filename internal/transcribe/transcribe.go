package transcribe

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"lyricsync/internal/config"
	"lyricsync/internal/services"
)

// Segment is one timed transcript entry produced by an engine. Seq carries
// the engine-assigned segment id when the engine provides one, otherwise the
// segment's position in the engine output.
type Segment struct {
	Seq   int64
	Start float64
	End   float64
	Text  string
}

// Transcriber turns a media file into timed transcript segments.
type Transcriber interface {
	// Transcribe processes the media at sourcePath. Returned segments are in
	// engine output order with cleaned, non-empty text.
	Transcribe(ctx context.Context, sourcePath string) ([]Segment, error)
}

// New selects the configured transcription engine.
func New(cfg *config.Config) (Transcriber, error) {
	switch cfg.Transcription.Engine {
	case "openai":
		return newOpenAIEngine(cfg), nil
	case "whisper":
		return newWhisperEngine(cfg), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "engine selection",
			fmt.Sprintf("unknown engine %q", cfg.Transcription.Engine), nil)
	}
}

// commandRunner executes an external tool. Tests substitute their own.
type commandRunner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// finalize cleans each segment's text and drops segments that end up empty.
func finalize(segments []Segment) []Segment {
	kept := segments[:0]
	for _, segment := range segments {
		segment.Text = CleanText(segment.Text)
		if segment.Text == "" {
			continue
		}
		kept = append(kept, segment)
	}
	return kept
}
