package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	openai "github.com/sashabaranov/go-openai"

	"lyricsync/internal/config"
	"lyricsync/internal/services"
)

// openAIEngine transcribes through the OpenAI audio API using the verbose
// JSON response format, which carries per-segment timing.
type openAIEngine struct {
	client   *openai.Client
	model    string
	language string
	tmpDir   string
	ffmpeg   string
	run      commandRunner
}

func newOpenAIEngine(cfg *config.Config) *openAIEngine {
	clientConfig := openai.DefaultConfig(cfg.Transcription.OpenAIAPIKey)
	if cfg.Transcription.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.Transcription.OpenAIBaseURL
	}
	return &openAIEngine{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    cfg.Transcription.Model,
		language: cfg.Transcription.Language,
		tmpDir:   cfg.Paths.TmpDir,
		ffmpeg:   cfg.Tools.FFmpegBinary,
		run:      runCommand,
	}
}

func (e *openAIEngine) Transcribe(ctx context.Context, sourcePath string) ([]Segment, error) {
	audioPath := filepath.Join(e.tmpDir, trimExt(filepath.Base(sourcePath))+"_audio.wav")
	if err := e.run(ctx, e.ffmpeg, extractAudioArgs(sourcePath, audioPath)...); err != nil {
		return nil, services.Wrap(services.ErrTranscription, "transcribe", "extract audio", sourcePath, err)
	}
	defer os.Remove(audioPath)

	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    e.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: e.language,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrTranscription, "transcribe", "openai request",
			fmt.Sprintf("model %s", e.model), err)
	}

	segments := make([]Segment, 0, len(resp.Segments))
	for _, raw := range resp.Segments {
		segments = append(segments, Segment{
			Seq:   int64(raw.ID),
			Start: raw.Start,
			End:   raw.End,
			Text:  raw.Text,
		})
	}
	return finalize(segments), nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
