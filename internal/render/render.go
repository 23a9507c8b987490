package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"lyricsync/internal/config"
	"lyricsync/internal/logging"
	"lyricsync/internal/media/ffprobe"
	"lyricsync/internal/services"
	"lyricsync/internal/storage"
	"lyricsync/internal/store"
	"lyricsync/internal/subtitle/ass"
)

// stderrTailLimit bounds how much encoder output gets folded into errors.
const stderrTailLimit = 2000

// prober resolves the pixel dimensions of a source asset.
type prober func(ctx context.Context, binary, path string) (ffprobe.Resolution, error)

// encoder runs the burn command. Tests substitute their own.
type encoder func(ctx context.Context, name string, args ...string) error

// Pipeline renders a project's segments into its source video. The subtitle
// document is compiled against the probed source resolution, written to a
// scratch file, and burned in with ffmpeg.
type Pipeline struct {
	cfg    *config.Config
	store  *store.Store
	assets *storage.Assets
	logger *slog.Logger
	probe  prober
	encode encoder
}

// NewPipeline constructs a burn pipeline using the real ffprobe and ffmpeg
// binaries from configuration.
func NewPipeline(cfg *config.Config, st *store.Store, assets *storage.Assets, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:    cfg,
		store:  st,
		assets: assets,
		logger: logger,
		probe:  probeResolution,
		encode: runEncoder,
	}
}

// Burn compiles the project's subtitle document and renders it into the
// source video. It returns the burned output path and records it on the
// project.
func (p *Pipeline) Burn(ctx context.Context, projectID string) (string, error) {
	ctx = services.WithStage(ctx, "burn")
	log := logging.WithContext(services.WithProjectID(ctx, projectID), p.logger)

	if _, err := p.store.GetProject(ctx, projectID); err != nil {
		return "", err
	}
	source, err := p.assets.FindUpload(projectID)
	if err != nil {
		return "", err
	}

	resolution, err := p.probe(ctx, p.cfg.Tools.FFprobeBinary, source)
	if err != nil {
		return "", services.Wrap(services.ErrProbe, "burn", "probe source", source, err)
	}
	log.Debug("probed source resolution",
		slog.Int("width", resolution.Width), slog.Int("height", resolution.Height))

	document, err := p.compileDocument(ctx, projectID, resolution)
	if err != nil {
		return "", err
	}

	scratch := p.assets.ScratchPath(projectID + ".ass")
	if err := os.WriteFile(scratch, []byte(document), 0o644); err != nil {
		return "", services.Wrap(services.ErrTransient, "burn", "write subtitle document", scratch, err)
	}
	defer os.Remove(scratch)

	output := p.assets.OutputPath(projectID)
	args := p.buildBurnArgs(source, scratch, output, resolution)
	if err := p.encode(ctx, p.cfg.Tools.FFmpegBinary, args...); err != nil {
		_ = os.Remove(output)
		return "", services.Wrap(services.ErrEncode, "burn", "ffmpeg", source, err)
	}

	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(output)
		return "", services.Wrap(services.ErrEncode, "burn", "verify output",
			fmt.Sprintf("encoder produced no artifact at %s", output), err)
	}

	if err := p.store.SetBurnedURI(ctx, projectID, output); err != nil {
		return "", err
	}
	log.Info("burned captions into video", slog.String("output", output))
	return output, nil
}

// CompileDocument builds the subtitle document without rendering, for preview.
func (p *Pipeline) CompileDocument(ctx context.Context, projectID string) (string, error) {
	if _, err := p.store.GetProject(ctx, projectID); err != nil {
		return "", err
	}
	source, err := p.assets.FindUpload(projectID)
	if err != nil {
		return "", err
	}
	resolution, err := p.probe(ctx, p.cfg.Tools.FFprobeBinary, source)
	if err != nil {
		return "", services.Wrap(services.ErrProbe, "burn", "probe source", source, err)
	}
	return p.compileDocument(ctx, projectID, resolution)
}

func (p *Pipeline) compileDocument(ctx context.Context, projectID string, resolution ffprobe.Resolution) (string, error) {
	segments, err := p.store.Segments(ctx, projectID)
	if err != nil {
		return "", err
	}

	style, err := p.loadStyle(ctx, projectID)
	if err != nil {
		return "", err
	}

	cues := make([]ass.Segment, 0, len(segments))
	for _, segment := range segments {
		cues = append(cues, ass.Segment{Start: segment.Start, End: segment.End, Text: segment.Text})
	}

	document, err := ass.BuildDocument(resolution.Width, resolution.Height, ass.Resolve(style), cues)
	if errors.Is(err, ass.ErrNoCues) {
		return "", services.Wrap(services.ErrValidation, "burn", "compile document", "no visible cues to render", err)
	}
	if err != nil {
		return "", services.Wrap(services.ErrEncode, "burn", "compile document", projectID, err)
	}
	return document, nil
}

func (p *Pipeline) loadStyle(ctx context.Context, projectID string) (*ass.Style, error) {
	raw, err := p.store.StyleDocument(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var style ass.Style
	if err := json.Unmarshal(raw, &style); err != nil {
		return nil, services.Wrap(services.ErrValidation, "burn", "decode style", projectID, err)
	}
	return &style, nil
}

func (p *Pipeline) buildBurnArgs(source, subtitlePath, output string, resolution ffprobe.Resolution) []string {
	filter := fmt.Sprintf("subtitles=%s", escapeFilterPath(subtitlePath))
	if fonts := strings.TrimSpace(p.cfg.Paths.FontsDir); fonts != "" {
		filter += fmt.Sprintf(":fontsdir=%s", escapeFilterPath(fonts))
	}
	// The subtitles filter can alter the frame size; pin it to the source.
	filter += fmt.Sprintf(",scale=%d:%d", resolution.Width, resolution.Height)
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", p.cfg.Tools.X264Preset,
		"-crf", fmt.Sprintf("%d", p.cfg.Tools.X264CRF),
		"-c:a", "copy",
		output,
	}
}

// escapeFilterPath escapes a path for use inside an ffmpeg filter argument,
// where backslashes, colons, and quotes are metacharacters.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		":", `\:`,
		"'", `\'`,
	)
	return "'" + replacer.Replace(path) + "'"
}

func probeResolution(ctx context.Context, binary, path string) (ffprobe.Resolution, error) {
	result, err := ffprobe.Inspect(ctx, binary, path)
	if err != nil {
		return ffprobe.Resolution{}, err
	}
	return result.VideoResolution()
}

// runEncoder executes ffmpeg, folding a bounded tail of its stderr into the
// returned error. Encoder logs can run to megabytes on long sources.
func runEncoder(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		tail := stderr.Bytes()
		if len(tail) > stderrTailLimit {
			tail = tail[len(tail)-stderrTailLimit:]
		}
		if detail := strings.TrimSpace(string(tail)); detail != "" {
			return fmt.Errorf("%s: %w: %s", name, err, detail)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
