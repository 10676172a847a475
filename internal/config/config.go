package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	EnvPrefix = "LIBMV_BUNDLE_"

	defaultManifest         = "files.txt"
	defaultPrimaryDir       = "libmv"
	defaultThirdPartyDir    = "third_party"
	defaultOutput           = "CMakeLists.txt"
	defaultLocale           = "en-US"
	defaultBranch           = "master"
	defaultSubdir           = "src"
	defaultChangelog        = "ChangeLog"
	defaultChangelogEntries = 50
	defaultFixtureDir       = "test_data_sets"
)

type UpstreamConfig struct {
	URL              string `yaml:"url"`
	Branch           string `yaml:"branch"`
	Subdir           string `yaml:"subdir"`
	Changelog        string `yaml:"changelog"`
	ChangelogEntries int    `yaml:"changelog_entries"`
}

type Config struct {
	DestRoot         string         `yaml:"dest_root"`
	SourceRoot       string         `yaml:"source_root"`
	Manifest         string         `yaml:"manifest"`
	PrimaryDir       string         `yaml:"primary_dir"`
	ThirdPartyDir    string         `yaml:"third_party_dir"`
	Output           string         `yaml:"output"`
	TemplateFileName string         `yaml:"template_filename"`
	FixtureDirs      []string       `yaml:"fixture_dirs"`
	Locale           string         `yaml:"locale"`
	LogLevel         string         `yaml:"log_level"`
	Upstream         UpstreamConfig `yaml:"upstream"`
}

func (c *Config) SetDefaults() {
	if c.DestRoot == "" {
		c.DestRoot = "."
	}
	if c.Manifest == "" {
		c.Manifest = defaultManifest
	}
	if c.PrimaryDir == "" {
		c.PrimaryDir = defaultPrimaryDir
	}
	if c.ThirdPartyDir == "" {
		c.ThirdPartyDir = defaultThirdPartyDir
	}
	if c.Output == "" {
		c.Output = defaultOutput
	}
	if len(c.FixtureDirs) == 0 {
		c.FixtureDirs = []string{defaultFixtureDir}
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}
	if c.Upstream.Branch == "" {
		c.Upstream.Branch = defaultBranch
	}
	if c.Upstream.Subdir == "" {
		c.Upstream.Subdir = defaultSubdir
	}
	if c.Upstream.Changelog == "" {
		c.Upstream.Changelog = defaultChangelog
	}
	if c.Upstream.ChangelogEntries == 0 {
		c.Upstream.ChangelogEntries = defaultChangelogEntries
	}
}

// Validate is called after defaults and env overrides are applied.
func (c *Config) Validate() error {
	if err := checkVendoredDir("primary_dir", c.PrimaryDir); err != nil {
		return err
	}

	if err := checkVendoredDir("third_party_dir", c.ThirdPartyDir); err != nil {
		return err
	}

	if overlaps(filepath.Clean(c.PrimaryDir), filepath.Clean(c.ThirdPartyDir)) {
		return fmt.Errorf("primary_dir and third_party_dir must not overlap: %s, %s", c.PrimaryDir, c.ThirdPartyDir)
	}

	if c.SourceRoot == "" && c.Upstream.URL == "" {
		return errors.New("either source_root or upstream.url must be set")
	}

	if c.SourceRoot != "" {
		if err := c.checkSourceRoot(); err != nil {
			return err
		}
	}

	if c.Upstream.ChangelogEntries < 0 {
		return fmt.Errorf("invalid changelog_entries: %d", c.Upstream.ChangelogEntries)
	}

	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}

	if _, err := c.Language(); err != nil {
		return err
	}

	return nil
}

// checkVendoredDir accepts only paths strictly below dest_root. The vendored
// roots are wiped on every run.
func checkVendoredDir(key, dir string) error {
	clean := filepath.Clean(dir)
	if dir == "" || filepath.IsAbs(clean) || clean == "." || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s must be a relative path inside dest_root: %q", key, dir)
	}

	return nil
}

func (c *Config) checkSourceRoot() error {
	src, err := filepath.Abs(c.SourceRoot)
	if err != nil {
		return fmt.Errorf("cannot resolve source_root: %w", err)
	}

	for _, root := range []string{c.PrimaryRoot(), c.ThirdPartyRoot()} {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("cannot resolve %s: %w", root, err)
		}

		if overlaps(src, abs) {
			return fmt.Errorf("source_root %s overlaps vendored root %s", c.SourceRoot, root)
		}
	}

	return nil
}

// overlaps reports whether a and b are the same path or one contains the other.
func overlaps(a, b string) bool {
	return within(a, b) || within(b, a)
}

func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (c *Config) Language() (language.Tag, error) {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}

	return tag, nil
}

// Path resolves a path from the config against DestRoot.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(c.DestRoot, p)
}

func (c *Config) PrimaryRoot() string {
	return c.Path(c.PrimaryDir)
}

func (c *Config) ThirdPartyRoot() string {
	return c.Path(c.ThirdPartyDir)
}

func (c *Config) ManifestPath() string {
	return c.Path(c.Manifest)
}

func (c *Config) OutputPath() string {
	return c.Path(c.Output)
}

func (c *Config) ChangelogPath() string {
	return c.Path(c.Upstream.Changelog)
}

func (c *Config) applyEnv() {
	for key, dst := range map[string]*string{
		"SOURCE_ROOT":     &c.SourceRoot,
		"DEST_ROOT":       &c.DestRoot,
		"LOG_LEVEL":       &c.LogLevel,
		"UPSTREAM_URL":    &c.Upstream.URL,
		"UPSTREAM_BRANCH": &c.Upstream.Branch,
	} {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
}

// Load reads cfgPath if it exists. A missing file leaves the defaults in place.
func Load(cfgPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(cfgPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", cfgPath, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("cannot read config file %s: %w", cfgPath, err)
	}

	cfg.applyEnv()
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
