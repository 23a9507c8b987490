package testsupport

import (
	"context"
	"testing"

	"lyricsync/internal/config"
	"lyricsync/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewProject inserts a project row for tests using the provided store.
func NewProject(t testing.TB, st *store.Store, id, ownerKey, originalURI string) *store.Project {
	t.Helper()

	project := &store.Project{ID: id, OwnerKey: ownerKey, OriginalURI: originalURI}
	if err := st.CreateProject(context.Background(), project); err != nil {
		t.Fatalf("store.CreateProject: %v", err)
	}
	return project
}
