package daemon

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"lyricsync/internal/services"
	"lyricsync/internal/store"
)

// ownerKeyHeader carries the project credential issued at upload time.
const ownerKeyHeader = "X-Owner-Key"

// ownerHandler is a project-scoped handler that runs after the owner
// credential has been verified.
type ownerHandler func(w http.ResponseWriter, r *http.Request, project *store.Project)

// withOwner resolves the {id} path segment and verifies the owner key. A
// missing project and a wrong key are indistinguishable to the caller, so
// project ids leak nothing without the credential.
func (s *apiServer) withOwner(next ownerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := r.PathValue("id")
		project, err := s.daemon.store.GetProject(r.Context(), projectID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				s.writeError(w, http.StatusNotFound, "project not found")
				return
			}
			s.writeServiceError(w, err)
			return
		}

		provided := strings.TrimSpace(r.Header.Get(ownerKeyHeader))
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(project.OwnerKey)) != 1 {
			s.writeError(w, http.StatusNotFound, "project not found")
			return
		}
		next(w, r, project)
	}
}

// authMiddleware validates bearer tokens for operator endpoints. An empty
// token disables authentication.
func authMiddleware(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		if subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(auth, "Bearer ")), []byte(token)) != 1 {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
