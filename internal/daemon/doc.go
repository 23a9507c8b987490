// Package daemon coordinates the long-running lyricsync process.
//
// It wires configuration, project storage, and both pipelines into a single
// lifecycle with flock-based locking to prevent multiple instances, and it
// serves the HTTP API that drives uploads, segment editing, styling, burns,
// and asset retrieval.
//
// Keep orchestration logic here: pipeline steps live in their respective
// packages while the daemon focuses on startup, shutdown, and request
// routing.
package daemon
