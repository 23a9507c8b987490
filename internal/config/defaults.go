package config

const (
	defaultDataDir       = "~/.local/share/lyricsync"
	defaultLogDir        = "~/.local/share/lyricsync/logs"
	defaultAPIBind       = "127.0.0.1:8787"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultX264Preset    = "medium"
	defaultX264CRF       = 23
	defaultEngine        = "openai"
	defaultModel         = "whisper-1"
	defaultWhisperBinary = "whisperx"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Tools: Tools{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			X264Preset:    defaultX264Preset,
			X264CRF:       defaultX264CRF,
		},
		Transcription: Transcription{
			Engine:        defaultEngine,
			Model:         defaultModel,
			WhisperBinary: defaultWhisperBinary,
		},
		Upload: Upload{
			AllowedExtensions: []string{".mp4", ".mov", ".m4a", ".mp3", ".wav", ".webm"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
