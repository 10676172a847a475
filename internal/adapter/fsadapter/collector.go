package fsadapter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jgivc/libmvbundle/internal/common"
	"github.com/jgivc/libmvbundle/internal/entity"
	"github.com/jgivc/libmvbundle/internal/util"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// Clear removes everything under each root and leaves the roots empty.
func (a *fsAdapter) Clear(roots ...string) error {
	var err error
	for _, root := range roots {
		if rmErr := a.fs.RemoveAll(root); rmErr != nil {
			err = multierr.Append(err, fmt.Errorf("cannot remove %s: %w", root, rmErr))

			continue
		}

		if mkErr := a.fs.MkdirAll(root, dirPerm); mkErr != nil {
			err = multierr.Append(err, fmt.Errorf("cannot create %s: %w", root, mkErr))

			continue
		}

		a.log.Debug("Cleared", slog.String("root", root))
	}

	return err
}

// Verify checks that every manifest entry is a regular file under srcRoot.
func (a *fsAdapter) Verify(entries []entity.ManifestEntry, srcRoot string) error {
	if ok, err := a.dirExists(srcRoot); err != nil {
		return fmt.Errorf("cannot stat source root: %w", err)
	} else if !ok {
		return fmt.Errorf("%w: %s", common.ErrSourceRootNotFound, srcRoot)
	}

	for _, entry := range entries {
		if src := filepath.Join(srcRoot, filepath.FromSlash(string(entry))); !a.fileExists(src) {
			return fmt.Errorf("%w: %s", common.ErrManifestEntryMissing, entry)
		}
	}

	return nil
}

// Collect copies every manifest entry from srcRoot to the same relative path
// under dstRoot. All entries are verified before the first file is written, so
// a missing entry leaves the destination untouched.
func (a *fsAdapter) Collect(entries []entity.ManifestEntry, srcRoot, dstRoot string) ([]entity.CopiedFile, error) {
	if err := a.Verify(entries, srcRoot); err != nil {
		return nil, err
	}

	copied := make([]entity.CopiedFile, 0, len(entries))
	for _, entry := range entries {
		rel := filepath.FromSlash(string(entry))

		file, err := a.copyFile(filepath.Join(srcRoot, rel), filepath.Join(dstRoot, rel))
		if err != nil {
			return nil, fmt.Errorf("cannot copy %s: %w", entry, err)
		}
		file.Path = string(entry)

		a.log.Debug("Copied", slog.String("path", file.Path), slog.Int64("size", file.Size))
		copied = append(copied, file)
	}

	return copied, nil
}

func (a *fsAdapter) copyFile(src, dst string) (entity.CopiedFile, error) {
	in, err := a.fs.Open(src)
	if err != nil {
		return entity.CopiedFile{}, err
	}
	defer in.Close()

	perm := os.FileMode(filePerm)
	if info, err := in.Stat(); err == nil {
		perm = info.Mode().Perm()
	}

	if err := a.fs.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return entity.CopiedFile{}, fmt.Errorf("cannot create parent dir: %w", err)
	}

	out, err := a.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return entity.CopiedFile{}, err
	}

	size, sum, err := util.CopyWithChecksum(out, in)
	if err != nil {
		return entity.CopiedFile{}, multierr.Append(err, out.Close())
	}

	if err := out.Close(); err != nil {
		return entity.CopiedFile{}, err
	}

	return entity.CopiedFile{Size: size, SHA256: sum}, nil
}

// WriteFileAtomic writes data to a temp file next to name and renames it over name.
func (a *fsAdapter) WriteFileAtomic(name string, data []byte) (err error) {
	dir := filepath.Dir(name)
	if err := a.fs.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("cannot create dir %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(a.fs, dir, "."+filepath.Base(name)+".tmp-")
	if err != nil {
		return fmt.Errorf("cannot create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			err = multierr.Append(err, a.fs.Remove(tmpName))
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return multierr.Append(fmt.Errorf("cannot write temp file: %w", err), tmp.Close())
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot close temp file: %w", err)
	}

	if err := a.fs.Chmod(tmpName, filePerm); err != nil {
		return fmt.Errorf("cannot chmod temp file: %w", err)
	}

	if err := a.fs.Rename(tmpName, name); err != nil {
		return fmt.Errorf("cannot rename %s to %s: %w", tmpName, name, err)
	}

	a.log.Debug("Written", slog.String("path", name), slog.Int("size", len(data)))

	return nil
}
