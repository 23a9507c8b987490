package daemon_test

import (
	"context"
	"testing"

	"lyricsync/internal/daemon"
	"lyricsync/internal/testsupport"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	d, err := daemon.New(cfg, st, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if d.Addr() == "" {
		t.Fatal("expected bound api address after start")
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected running status")
	}
	if status.DBPath != st.Path() {
		t.Fatalf("unexpected db path %q", status.DBPath)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected stopped status")
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	first, err := daemon.New(cfg, st, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, st, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second instance to fail lock acquisition")
	}
}

func TestDaemonRejectsMisconfiguredEngine(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Transcription.Engine = "nope"
	st := testsupport.MustOpenStore(t, cfg)

	if _, err := daemon.New(cfg, st, nil); err == nil {
		t.Fatal("expected constructor failure for unknown engine")
	}
}
