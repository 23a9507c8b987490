// Package services provides the shared error taxonomy and context annotation
// helpers used by the ingestion and render pipelines.
//
// Errors are classified with sentinel markers (validation, probe, encode,
// transcription, transient) so callers can distinguish client fault from
// server fault without inspecting message text. Wrap attaches stage and
// operation context while preserving the marker for errors.Is checks.
package services
