package fsadapter

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jgivc/libmvbundle/internal/entity"
	"github.com/spf13/afero"
)

// Scan walks root and returns every regular file below it as a path relative
// to base. Symlinks and other non-regular entries are skipped. A missing root
// yields an empty list.
func (a *fsAdapter) Scan(base, root string, kind entity.Root) ([]entity.DiscoveredPath, error) {
	ok, err := a.dirExists(root)
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", root, err)
	}

	if !ok {
		a.log.Warn("Root does not exist", slog.String("root", root))

		return []entity.DiscoveredPath{}, nil
	}

	paths := []entity.DiscoveredPath{}
	err = afero.Walk(a.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			if !info.IsDir() {
				a.log.Debug("Skip non-regular file", slog.String("path", path))
			}

			return nil
		}

		rel, err := relSlash(base, path)
		if err != nil {
			return err
		}

		paths = append(paths, entity.DiscoveredPath{Path: rel, Root: kind})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot scan %s: %w", root, err)
	}

	a.log.Info("Scanned", slog.String("root", root), slog.Int("files", len(paths)))

	return paths, nil
}
