package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lyricsync/internal/config"
)

func TestLoadDefaultConfigUsesEnvOpenAIKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "lyricsync")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.UploadDir != filepath.Join(wantData, "uploads") {
		t.Fatalf("unexpected upload dir: %q", cfg.Paths.UploadDir)
	}
	if cfg.Paths.OutputDir != filepath.Join(wantData, "outputs") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8787" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Transcription.Engine != "openai" {
		t.Fatalf("unexpected default engine: %q", cfg.Transcription.Engine)
	}
	if cfg.Transcription.OpenAIAPIKey != "test-key" {
		t.Fatalf("expected OpenAI key from env, got %q", cfg.Transcription.OpenAIAPIKey)
	}
	if cfg.Tools.FFmpegBinary != "ffmpeg" || cfg.Tools.FFprobeBinary != "ffprobe" {
		t.Fatalf("unexpected tool binaries: %q %q", cfg.Tools.FFmpegBinary, cfg.Tools.FFprobeBinary)
	}
	if cfg.Tools.X264CRF != 23 {
		t.Fatalf("unexpected crf: %d", cfg.Tools.X264CRF)
	}
	if !cfg.AllowedExtension(".mp4") || cfg.AllowedExtension(".exe") {
		t.Fatal("unexpected allowed extension behavior")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.UploadDir, cfg.Paths.OutputDir, cfg.Paths.TmpDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "lyricsync.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
}

func TestLoadParsesConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(tempHome, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`data_dir = "~/captions"`,
		`api_bind = "127.0.0.1:9000"`,
		"[tools]",
		`x264_preset = "fast"`,
		"x264_crf = 20",
		"[transcription]",
		`engine = "whisper"`,
		`model = "large-v3"`,
		"[upload]",
		`allowed_extensions = ["mp4", ".MOV"]`,
		"max_bytes = 1024",
		"[logging]",
		`format = "json"`,
		`level = "debug"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved existing path %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "captions") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Tools.X264Preset != "fast" || cfg.Tools.X264CRF != 20 {
		t.Fatalf("unexpected tools config: %+v", cfg.Tools)
	}
	if cfg.Transcription.Engine != "whisper" {
		t.Fatalf("unexpected engine: %q", cfg.Transcription.Engine)
	}
	// Extensions are normalized to lowercase with a leading dot.
	if !cfg.AllowedExtension(".mp4") || !cfg.AllowedExtension(".mov") {
		t.Fatalf("expected normalized extensions, got %v", cfg.Upload.AllowedExtensions)
	}
	if cfg.Upload.MaxBytes != 1024 {
		t.Fatalf("unexpected max bytes: %d", cfg.Upload.MaxBytes)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "config.toml")
	if err := os.WriteFile(path, []byte("[transcription]\nengine = \"parrot\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for unknown engine")
	} else if !strings.Contains(err.Error(), "transcription.engine") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.toml")

	written, err := config.WriteSample(target)
	if err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if written != target {
		t.Fatalf("unexpected path: %q", written)
	}
	if _, err := config.WriteSample(target); err == nil {
		t.Fatal("expected error when sample already exists")
	}
}
