package upstream

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jgivc/libmvbundle/internal/config"
	"github.com/jgivc/libmvbundle/internal/entity"
	"github.com/spf13/afero"
)

const (
	checkoutDirName = "checkout"
	tempDirPrefix   = "libmvbundle-"
)

// GitRunner runs git with args in dir and returns its stdout.
type GitRunner func(ctx context.Context, dir string, args ...string) ([]byte, error)

func execGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	return out, nil
}

type FileWriter interface {
	WriteFileAtomic(name string, data []byte) error
}

type upstreamRepository struct {
	cfg    *config.UpstreamConfig
	fs     afero.Fs
	writer FileWriter
	run    GitRunner
	log    *slog.Logger
}

func NewUpstreamRepository(cfg *config.UpstreamConfig, writer FileWriter, log *slog.Logger) *upstreamRepository {
	return NewUpstreamRepositoryWithRunner(afero.NewOsFs(), cfg, writer, execGit, log)
}

func NewUpstreamRepositoryWithRunner(fs afero.Fs, cfg *config.UpstreamConfig, writer FileWriter, run GitRunner, log *slog.Logger) *upstreamRepository {
	return &upstreamRepository{
		cfg:    cfg,
		fs:     fs,
		writer: writer,
		run:    run,
		log:    log.With(slog.String("item", "UpstreamRepository")),
	}
}

// Checkout clones the configured branch into a new temp directory. The caller
// must Release the snapshot.
func (r *upstreamRepository) Checkout(ctx context.Context) (*entity.Snapshot, error) {
	if r.cfg.URL == "" {
		return nil, fmt.Errorf("upstream url is not configured")
	}

	tmp, err := afero.TempDir(r.fs, "", tempDirPrefix)
	if err != nil {
		return nil, fmt.Errorf("cannot create temp dir: %w", err)
	}

	snapshot := &entity.Snapshot{Dir: filepath.Join(tmp, checkoutDirName)}
	snapshot.Root = filepath.Join(snapshot.Dir, filepath.FromSlash(r.cfg.Subdir))

	args := []string{"clone", "--single-branch", "--branch", r.cfg.Branch}
	if r.cfg.ChangelogEntries > 0 {
		args = append(args, "--depth", strconv.Itoa(r.cfg.ChangelogEntries))
	}
	args = append(args, r.cfg.URL, snapshot.Dir)

	r.log.Info("Cloning", slog.String("url", r.cfg.URL), slog.String("branch", r.cfg.Branch))

	if _, err := r.run(ctx, tmp, args...); err != nil {
		return nil, r.releaseOnError(tmp, fmt.Errorf("cannot clone %s: %w", r.cfg.URL, err))
	}

	rev, err := r.run(ctx, snapshot.Dir, "rev-parse", "HEAD")
	if err != nil {
		return nil, r.releaseOnError(tmp, fmt.Errorf("cannot resolve revision: %w", err))
	}
	snapshot.Revision = strings.TrimSpace(string(rev))

	r.log.Info("Checked out", slog.String("revision", snapshot.Revision), slog.String("root", snapshot.Root))

	return snapshot, nil
}

func (r *upstreamRepository) releaseOnError(tmp string, err error) error {
	if rmErr := r.fs.RemoveAll(tmp); rmErr != nil {
		r.log.Error("Cannot remove temp dir", slog.String("path", tmp), slog.Any("error", rmErr))
	}

	return err
}

// Release removes the temp directory holding the snapshot.
func (r *upstreamRepository) Release(snapshot *entity.Snapshot) error {
	if snapshot == nil || snapshot.Dir == "" {
		return nil
	}

	tmp := filepath.Dir(snapshot.Dir)
	if err := r.fs.RemoveAll(tmp); err != nil {
		return fmt.Errorf("cannot remove %s: %w", tmp, err)
	}

	return nil
}

// WriteChangelog stores the recent history of the snapshot in fileName.
func (r *upstreamRepository) WriteChangelog(ctx context.Context, snapshot *entity.Snapshot, fileName string) error {
	if r.cfg.ChangelogEntries == 0 {
		return nil
	}

	out, err := r.run(ctx, snapshot.Dir, "log", "-n", strconv.Itoa(r.cfg.ChangelogEntries))
	if err != nil {
		return fmt.Errorf("cannot read history: %w", err)
	}

	if err := r.writer.WriteFileAtomic(fileName, out); err != nil {
		return fmt.Errorf("cannot write changelog: %w", err)
	}

	r.log.Info("Changelog written", slog.String("path", fileName))

	return nil
}
