// Package render burns a project's caption segments into its source video.
// It probes the source resolution, compiles the subtitle document against
// that canvas, and drives ffmpeg to produce the burned artifact.
package render
