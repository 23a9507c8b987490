package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lyricsync/internal/config"
	"lyricsync/internal/services"
)

// whisperEngine shells out to a local whisper-compatible CLI. The binary is
// expected to accept an input file plus --output_dir/--output_format flags
// and write <basename>.json next to its other artifacts.
type whisperEngine struct {
	binary   string
	model    string
	language string
	tmpDir   string
	ffmpeg   string
	run      commandRunner
}

func newWhisperEngine(cfg *config.Config) *whisperEngine {
	return &whisperEngine{
		binary:   cfg.Transcription.WhisperBinary,
		model:    cfg.Transcription.Model,
		language: cfg.Transcription.Language,
		tmpDir:   cfg.Paths.TmpDir,
		ffmpeg:   cfg.Tools.FFmpegBinary,
		run:      runCommand,
	}
}

type whisperOutput struct {
	Segments []whisperSegment `json:"segments"`
}

// whisperSegment tolerates builds that omit segment ids; Seq then falls back
// to the segment's array position.
type whisperSegment struct {
	ID    *int64  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func (e *whisperEngine) Transcribe(ctx context.Context, sourcePath string) ([]Segment, error) {
	base := trimExt(filepath.Base(sourcePath))
	audioPath := filepath.Join(e.tmpDir, base+"_audio.wav")
	if err := e.run(ctx, e.ffmpeg, extractAudioArgs(sourcePath, audioPath)...); err != nil {
		return nil, services.Wrap(services.ErrTranscription, "transcribe", "extract audio", sourcePath, err)
	}
	defer os.Remove(audioPath)

	outputDir := filepath.Join(e.tmpDir, base+"_whisper")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrTranscription, "transcribe", "prepare output dir", outputDir, err)
	}
	defer os.RemoveAll(outputDir)

	args := []string{
		audioPath,
		"--model", e.model,
		"--output_dir", outputDir,
		"--output_format", "json",
	}
	if e.language != "" {
		args = append(args, "--language", e.language)
	}
	if err := e.run(ctx, e.binary, args...); err != nil {
		return nil, services.Wrap(services.ErrTranscription, "transcribe", "whisper invocation", e.binary, err)
	}

	jsonPath := filepath.Join(outputDir, trimExt(filepath.Base(audioPath))+".json")
	payload, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrTranscription, "transcribe", "read whisper output", jsonPath, err)
	}
	segments, err := parseWhisperOutput(payload)
	if err != nil {
		return nil, services.Wrap(services.ErrTranscription, "transcribe", "parse whisper output", jsonPath, err)
	}
	return finalize(segments), nil
}

func parseWhisperOutput(payload []byte) ([]Segment, error) {
	var output whisperOutput
	if err := json.Unmarshal(payload, &output); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	segments := make([]Segment, 0, len(output.Segments))
	for i, raw := range output.Segments {
		seq := int64(i)
		if raw.ID != nil {
			seq = *raw.ID
		}
		segments = append(segments, Segment{Seq: seq, Start: raw.Start, End: raw.End, Text: raw.Text})
	}
	return segments, nil
}
