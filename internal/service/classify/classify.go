// Package classify partitions scanned paths into the lists of the generated
// build descriptor. It never touches the filesystem.
package classify

import (
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/jgivc/libmvbundle/internal/entity"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	headerExt  = ".h"
	testSuffix = "_test"
)

var (
	sourceExts = map[string]struct{}{
		".cc":  {},
		".cpp": {},
		".c":   {},
	}

	reNotIdent = regexp.MustCompile(`[^A-Za-z_]+`)
)

type Classifier struct {
	lang     language.Tag
	fixtures map[string]struct{}
}

func New(lang language.Tag, fixtureDirs []string) *Classifier {
	fixtures := make(map[string]struct{}, len(fixtureDirs))
	for _, dir := range fixtureDirs {
		if dir = strings.TrimSpace(dir); dir != "" {
			fixtures[dir] = struct{}{}
		}
	}

	return &Classifier{
		lang:     lang,
		fixtures: fixtures,
	}
}

// Classify returns the five descriptor lists for paths. The result depends only
// on the set of paths, not on their order.
func (c *Classifier) Classify(paths []entity.DiscoveredPath) *entity.Classification {
	res := &entity.Classification{
		Sources:           []string{},
		Headers:           []string{},
		ThirdPartySources: []string{},
		ThirdPartyHeaders: []string{},
		Tests:             []entity.TestDescriptor{},
	}

	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if _, dup := seen[p.Path]; dup {
			continue
		}
		seen[p.Path] = struct{}{}

		if c.isFixture(p.Path) {
			continue
		}

		switch Category(p.Path) {
		case entity.CategorySource:
			if name, ok := TestName(p.Path); ok {
				res.Tests = append(res.Tests, entity.TestDescriptor{Name: name, Path: p.Path})

				continue
			}

			if p.Root == entity.RootPrimary {
				res.Sources = append(res.Sources, p.Path)
			} else {
				res.ThirdPartySources = append(res.ThirdPartySources, p.Path)
			}
		case entity.CategoryHeader:
			if p.Root == entity.RootPrimary {
				res.Headers = append(res.Headers, p.Path)
			} else {
				res.ThirdPartyHeaders = append(res.ThirdPartyHeaders, p.Path)
			}
		}
	}

	cmp := c.descending()
	slices.SortFunc(res.Sources, cmp)
	slices.SortFunc(res.Headers, cmp)
	slices.SortFunc(res.ThirdPartySources, cmp)
	slices.SortFunc(res.ThirdPartyHeaders, cmp)
	slices.SortFunc(res.Tests, func(a, b entity.TestDescriptor) int {
		return cmp(a.Path, b.Path)
	})

	return res
}

// descending compares with the locale collation in reverse. Strings that
// collate equal fall back to reverse byte order so the order is total.
func (c *Classifier) descending() func(a, b string) int {
	col := collate.New(c.lang)

	return func(a, b string) int {
		if r := col.CompareString(b, a); r != 0 {
			return r
		}

		return strings.Compare(b, a)
	}
}

// isFixture reports whether any component of p names a fixture-data directory.
// A component matches on its full name or its name without extension.
func (c *Classifier) isFixture(p string) bool {
	if len(c.fixtures) == 0 {
		return false
	}

	for _, part := range strings.Split(p, "/") {
		if _, ok := c.fixtures[part]; ok {
			return true
		}

		if _, ok := c.fixtures[strings.TrimSuffix(part, path.Ext(part))]; ok {
			return true
		}
	}

	return false
}

func Category(p string) entity.Category {
	ext := strings.ToLower(path.Ext(p))

	if _, ok := sourceExts[ext]; ok {
		return entity.CategorySource
	}

	if ext == headerExt {
		return entity.CategoryHeader
	}

	return entity.CategoryOther
}

// TestName extracts the test identifier from a `<name>_test.<ext>` source path.
// Only letters and underscores are kept, so "image2_test.cc" gives "image".
// A name with nothing left after that, like "2_test.cc", is not a test.
func TestName(p string) (string, bool) {
	if Category(p) != entity.CategorySource {
		return "", false
	}

	base := path.Base(p)
	stem := strings.TrimSuffix(base, path.Ext(base))

	name, ok := strings.CutSuffix(stem, testSuffix)
	if !ok || name == "" {
		return "", false
	}

	if name = reNotIdent.ReplaceAllString(name, ""); name == "" {
		return "", false
	}

	return name, true
}
