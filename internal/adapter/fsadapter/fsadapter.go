package fsadapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

type fsAdapter struct {
	fs  afero.Fs
	log *slog.Logger
}

func NewFSAdapter(log *slog.Logger) *fsAdapter {
	return NewFSAdapterWithFS(afero.NewOsFs(), log)
}

func NewFSAdapterWithFS(fs afero.Fs, log *slog.Logger) *fsAdapter {
	return &fsAdapter{
		fs:  fs,
		log: log.With(slog.String("item", "FSAdapter")),
	}
}

func (a *fsAdapter) fileExists(path string) bool {
	if path == "" {
		return false
	}

	info, err := a.fs.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

func (a *fsAdapter) dirExists(path string) (bool, error) {
	info, err := a.fs.Stat(path)
	if err == nil {
		return info.IsDir(), nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// relSlash returns path relative to base with forward slashes.
func relSlash(base, path string) (string, error) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", fmt.Errorf("cannot make %s relative to %s: %w", path, base, err)
	}

	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path %s is outside of %s", path, base)
	}

	return rel, nil
}
