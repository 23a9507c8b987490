package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"lyricsync/internal/config"
	"lyricsync/internal/services"
)

// Assets manages the on-disk layout for uploads, burned outputs, and render
// scratch files. Uploads are stored as <project-id><ext> so the original
// container survives; outputs always land as <project-id>_burned.mp4.
type Assets struct {
	uploadDir string
	outputDir string
	tmpDir    string
	cfg       *config.Config
}

// NewAssets constructs the asset manager and creates its directories.
func NewAssets(cfg *config.Config) (*Assets, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "init", "create asset directories", err)
	}
	return &Assets{
		uploadDir: cfg.Paths.UploadDir,
		outputDir: cfg.Paths.OutputDir,
		tmpDir:    cfg.Paths.TmpDir,
		cfg:       cfg,
	}, nil
}

// SaveUpload streams an uploaded source asset into the upload directory. The
// filename only contributes its extension, which must be on the configured
// allow list. A configured size cap aborts and removes oversized writes.
func (a *Assets) SaveUpload(projectID, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || !a.cfg.AllowedExtension(ext) {
		return "", services.Wrap(services.ErrValidation, "storage", "save upload",
			fmt.Sprintf("unsupported upload type %q", ext), nil)
	}

	target := filepath.Join(a.uploadDir, projectID+ext)
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "storage", "save upload", "create asset file", err)
	}

	written, copyErr := a.copyCapped(out, r)
	closeErr := out.Close()
	if copyErr != nil {
		_ = os.Remove(target)
		return "", copyErr
	}
	if closeErr != nil {
		_ = os.Remove(target)
		return "", services.Wrap(services.ErrTransient, "storage", "save upload", "flush asset file", closeErr)
	}
	if written == 0 {
		_ = os.Remove(target)
		return "", services.Wrap(services.ErrValidation, "storage", "save upload", "empty upload", nil)
	}
	return target, nil
}

func (a *Assets) copyCapped(dst io.Writer, src io.Reader) (int64, error) {
	max := a.cfg.Upload.MaxBytes
	if max <= 0 {
		written, err := io.Copy(dst, src)
		if err != nil {
			return written, services.Wrap(services.ErrTransient, "storage", "save upload", "copy asset", err)
		}
		return written, nil
	}

	written, err := io.Copy(dst, io.LimitReader(src, max+1))
	if err != nil {
		return written, services.Wrap(services.ErrTransient, "storage", "save upload", "copy asset", err)
	}
	if written > max {
		return written, services.Wrap(services.ErrValidation, "storage", "save upload",
			fmt.Sprintf("upload exceeds %d byte limit", max), nil)
	}
	return written, nil
}

// FindUpload locates the stored source asset for a project regardless of its
// original extension.
func (a *Assets) FindUpload(projectID string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(a.uploadDir, projectID+".*"))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "storage", "find upload", projectID, err)
	}
	if len(matches) == 0 {
		return "", services.Wrap(services.ErrNotFound, "storage", "find upload",
			fmt.Sprintf("no source asset for %s", projectID), nil)
	}
	return matches[0], nil
}

// OutputPath returns where the burned artifact for a project lives.
func (a *Assets) OutputPath(projectID string) string {
	return filepath.Join(a.outputDir, projectID+"_burned.mp4")
}

// ScratchPath returns a path inside the render scratch directory.
func (a *Assets) ScratchPath(name string) string {
	return filepath.Join(a.tmpDir, name)
}

// Remove deletes a single asset file. A missing file is not an error.
func (a *Assets) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrTransient, "storage", "remove asset", path, err)
	}
	return nil
}

// RemoveProjectAssets deletes the project's source upload and burned output.
// The first failure is returned but removal of the remaining assets is still
// attempted.
func (a *Assets) RemoveProjectAssets(projectID string) error {
	var firstErr error
	if upload, err := a.FindUpload(projectID); err == nil {
		if rmErr := a.Remove(upload); rmErr != nil {
			firstErr = rmErr
		}
	} else if !errors.Is(err, services.ErrNotFound) {
		firstErr = err
	}
	if rmErr := a.Remove(a.OutputPath(projectID)); rmErr != nil && firstErr == nil {
		firstErr = rmErr
	}
	return firstErr
}
