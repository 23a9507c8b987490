package transcribe

// Audio extraction ahead of transcription. Engines feed a mono 16kHz WAV to
// the model regardless of the uploaded container, which keeps API payloads
// small and sidesteps codec support gaps in local whisper builds.

func extractAudioArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}
