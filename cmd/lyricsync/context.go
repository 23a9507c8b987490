package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"lyricsync/internal/config"
	"lyricsync/internal/ingest"
	"lyricsync/internal/logging"
	"lyricsync/internal/render"
	"lyricsync/internal/storage"
	"lyricsync/internal/store"
	"lyricsync/internal/transcribe"
)

// commandContext lazily shares configuration and the opened store across
// subcommands. Everything operates on the local data directory, so the CLI
// works with or without a running daemon.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	storeOnce sync.Once
	store     *store.Store
	storeErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.storeOnce.Do(func() {
		c.store, c.storeErr = store.Open(cfg)
	})
	return c.store, c.storeErr
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
	}
}

func (c *commandContext) assets() (*storage.Assets, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return storage.NewAssets(cfg)
}

func (c *commandContext) ingestPipeline() (*ingest.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	st, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	assets, err := c.assets()
	if err != nil {
		return nil, err
	}
	transcriber, err := transcribe.New(cfg)
	if err != nil {
		return nil, err
	}
	return ingest.NewPipeline(cfg, st, assets, transcriber, logging.NewNop()), nil
}

func (c *commandContext) renderPipeline() (*render.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	st, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	assets, err := c.assets()
	if err != nil {
		return nil, err
	}
	return render.NewPipeline(cfg, st, assets, logging.NewNop()), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
