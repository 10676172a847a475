package manifest

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/jgivc/libmvbundle/internal/common"
	"github.com/jgivc/libmvbundle/internal/entity"
	"github.com/spf13/afero"
)

type manifestAdapter struct {
	fs afero.Fs
}

func NewManifestAdapter() *manifestAdapter {
	return NewManifestAdapterWithFS(afero.NewOsFs())
}

func NewManifestAdapterWithFS(fs afero.Fs) *manifestAdapter {
	return &manifestAdapter{fs: fs}
}

func (a *manifestAdapter) Read(fileName string) ([]entity.ManifestEntry, error) {
	f, err := a.fs.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("cannot open manifest: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("cannot parse manifest %s: %w", fileName, err)
	}

	return entries, nil
}

// Parse reads one relative path per line, top to bottom. Blank lines are skipped.
func Parse(r io.Reader) ([]entity.ManifestEntry, error) {
	var entries []entity.ManifestEntry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		entry, err := normalize(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read manifest: %w", err)
	}

	if len(entries) < 1 {
		return nil, common.ErrEmptyManifest
	}

	return entries, nil
}

func normalize(line string) (entity.ManifestEntry, error) {
	p := path.Clean(strings.ReplaceAll(line, `\`, "/"))

	if path.IsAbs(p) || p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidManifestEntry, line)
	}

	return entity.ManifestEntry(p), nil
}
