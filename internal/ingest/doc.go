// Package ingest turns an uploaded video into a fully published caption
// project. The asset write, transcription, and record publication behave as
// one unit: a failure anywhere rolls back the record and discards the asset.
package ingest
