// Package storage lays out uploaded source assets, burned outputs, and
// render scratch files on disk.
package storage
