package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTools() error {
	if c.Tools.X264CRF < 0 || c.Tools.X264CRF > 51 {
		return errors.New("tools.x264_crf must be between 0 and 51")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Engine {
	case "openai":
		if c.Transcription.OpenAIAPIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/lyricsync/config.toml"
			}
			return fmt.Errorf("transcription.openai_api_key is required for the openai engine. Set OPENAI_API_KEY env var or edit %s (create with 'lyricsync config init')", defaultPath)
		}
	case "whisper":
	default:
		return fmt.Errorf("transcription.engine must be %q or %q, got %q", "openai", "whisper", c.Transcription.Engine)
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.MaxBytes < 0 {
		return errors.New("upload.max_bytes must not be negative")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return errors.New("upload.allowed_extensions must not be empty")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be %q or %q, got %q", "console", "json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
