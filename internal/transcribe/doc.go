// Package transcribe produces timed transcript segments from uploaded media.
// Two engines are supported: the OpenAI audio API and a local
// whisper-compatible CLI. Both extract a mono 16kHz WAV with ffmpeg before
// invoking the model and both clean segment text the same way.
package transcribe
