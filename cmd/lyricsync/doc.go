// Command lyricsync is the operator CLI. It works directly against the local
// data directory for project management and talks to the daemon's HTTP API
// only for status.
package main
