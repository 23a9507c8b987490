// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no lyricsync-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Resolution: pixel dimensions of the first video stream
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
package ffprobe
