package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"lyricsync/internal/config"
	"lyricsync/internal/logging"
	"lyricsync/internal/services"
	"lyricsync/internal/store"
	"lyricsync/internal/subtitle/ass"
)

// uploadMemoryLimit bounds how much of a multipart upload is buffered in
// memory before spilling to disk.
const uploadMemoryLimit = 32 << 20

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/videos", srv.handleUpload)
	mux.HandleFunc("GET /api/videos/{id}", srv.withOwner(srv.handleGetVideo))
	mux.HandleFunc("GET /api/videos/{id}/burned", srv.withOwner(srv.handleGetBurned))
	mux.HandleFunc("GET /api/videos/{id}/segments", srv.withOwner(srv.handleGetSegments))
	mux.HandleFunc("PUT /api/videos/{id}/segments", srv.withOwner(srv.handlePutSegments))
	mux.HandleFunc("PUT /api/videos/{id}/style", srv.withOwner(srv.handlePutStyle))
	mux.HandleFunc("POST /api/videos/{id}/burn", srv.withOwner(srv.handleBurn))
	mux.HandleFunc("DELETE /api/videos/{id}", srv.withOwner(srv.handleDelete))
	mux.HandleFunc("GET /api/status", authMiddleware(cfg.Paths.APIToken, srv.handleStatus))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// uploadResponse is the one place the owner key is ever disclosed.
type uploadResponse struct {
	ProjectID    string `json:"project_id"`
	OwnerKey     string `json:"owner_key"`
	SegmentCount int    `json:"segment_count"`
}

func (s *apiServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		s.writeError(w, http.StatusBadRequest, "expected multipart upload with a file field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	result, err := s.daemon.ingest.Ingest(r.Context(), header.Filename, file)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, uploadResponse{
		ProjectID:    result.ProjectID,
		OwnerKey:     result.OwnerKey,
		SegmentCount: result.SegmentCount,
	})
}

// handleGetVideo streams the stored source asset back to its owner.
func (s *apiServer) handleGetVideo(w http.ResponseWriter, r *http.Request, project *store.Project) {
	source, err := s.daemon.assets.FindUpload(project.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	serveAsset(w, r, source)
}

// handleGetBurned streams the burned output once a burn has completed.
func (s *apiServer) handleGetBurned(w http.ResponseWriter, r *http.Request, project *store.Project) {
	if project.BurnedURI == "" {
		s.writeError(w, http.StatusNotFound, "project has no burned output")
		return
	}
	if _, err := os.Stat(project.BurnedURI); err != nil {
		s.writeError(w, http.StatusNotFound, "burned output is missing")
		return
	}
	serveAsset(w, r, project.BurnedURI)
}

func serveAsset(w http.ResponseWriter, r *http.Request, path string) {
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

type segmentPayload struct {
	Seq   int64   `json:"seq"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type segmentsEnvelope struct {
	Segments []segmentPayload `json:"segments"`
}

func (s *apiServer) handleGetSegments(w http.ResponseWriter, r *http.Request, project *store.Project) {
	segments, err := s.daemon.store.Segments(r.Context(), project.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	payload := segmentsEnvelope{Segments: make([]segmentPayload, 0, len(segments))}
	for _, segment := range segments {
		payload.Segments = append(payload.Segments, segmentPayload{
			Seq:   segment.Seq,
			Start: segment.Start,
			End:   segment.End,
			Text:  segment.Text,
		})
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handlePutSegments(w http.ResponseWriter, r *http.Request, project *store.Project) {
	var payload segmentsEnvelope
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed segments payload")
		return
	}
	segments := make([]store.Segment, 0, len(payload.Segments))
	for _, segment := range payload.Segments {
		segments = append(segments, store.Segment{
			ProjectID: project.ID,
			Seq:       segment.Seq,
			Start:     segment.Start,
			End:       segment.End,
			Text:      segment.Text,
		})
	}
	if err := s.daemon.store.ReplaceSegments(r.Context(), project.ID, segments); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"segment_count": len(segments)})
}

func (s *apiServer) handlePutStyle(w http.ResponseWriter, r *http.Request, project *store.Project) {
	var style ass.Style
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&style); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed style payload")
		return
	}
	document, err := json.Marshal(style)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := s.daemon.store.SetStyleDocument(r.Context(), project.ID, document); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleBurn(w http.ResponseWriter, r *http.Request, project *store.Project) {
	output, err := s.daemon.render.Burn(r.Context(), project.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"output": output})
}

func (s *apiServer) handleDelete(w http.ResponseWriter, r *http.Request, project *store.Project) {
	if err := s.daemon.store.DeleteProject(r.Context(), project.ID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	if err := s.daemon.assets.RemoveProjectAssets(project.ID); err != nil {
		// Rows are gone; orphaned files only cost disk space.
		s.log().Warn("failed to remove project assets",
			slog.String(logging.FieldProjectID, project.ID), slog.Any("error", err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps classified errors onto response codes. Server-side
// failures are logged in full but reported generically.
func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	if services.ClientFault(err) {
		s.writeError(w, status, err.Error())
		return
	}
	s.log().Error("request failed", slog.String("error", err.Error()))
	s.writeError(w, status, "internal error")
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(slog.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
