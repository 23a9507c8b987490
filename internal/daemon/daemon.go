package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"lyricsync/internal/config"
	"lyricsync/internal/deps"
	"lyricsync/internal/ingest"
	"lyricsync/internal/logging"
	"lyricsync/internal/render"
	"lyricsync/internal/storage"
	"lyricsync/internal/store"
	"lyricsync/internal/transcribe"
)

// Daemon owns the long-running caption service: the project store, the asset
// layout, both pipelines, and the HTTP API. It enforces single-instance
// execution through a lock file.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	assets *storage.Assets
	ingest *ingest.Pipeline
	render *render.Pipeline

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool          `json:"running"`
	DBPath       string        `json:"db_path"`
	LockFilePath string        `json:"lock_file_path"`
	APIBind      string        `json:"api_bind"`
	Engine       string        `json:"engine"`
	Dependencies []deps.Status `json:"dependencies"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	assets, err := storage.NewAssets(cfg)
	if err != nil {
		return nil, err
	}
	transcriber, err := transcribe.New(cfg)
	if err != nil {
		return nil, err
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "lyricsyncd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		assets:   assets,
		ingest:   ingest.NewPipeline(cfg, st, assets, transcriber, logger),
		render:   render.NewPipeline(cfg, st, assets, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lyricsync daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("lyricsync daemon started", slog.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", slog.Any("error", err))
	}
	d.running.Store(false)
	d.logger.Info("lyricsync daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the bound API address, or "" before Start.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		DBPath:       d.store.Path(),
		LockFilePath: d.lockPath,
		APIBind:      d.cfg.Paths.APIBind,
		Engine:       d.cfg.Transcription.Engine,
		Dependencies: deps.CheckBinaries(deps.Requirements(d.cfg)),
	}
}
