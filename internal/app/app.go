package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jgivc/libmvbundle/internal/adapter/fsadapter"
	"github.com/jgivc/libmvbundle/internal/adapter/manifest"
	"github.com/jgivc/libmvbundle/internal/adapter/tpladapter"
	"github.com/jgivc/libmvbundle/internal/config"
	"github.com/jgivc/libmvbundle/internal/entity"
	"github.com/jgivc/libmvbundle/internal/repository/upstream"
	"github.com/jgivc/libmvbundle/internal/service/bundle"
	"github.com/jgivc/libmvbundle/internal/service/classify"
)

type App struct {
	cfg    *config.Config
	log    *slog.Logger
	logOut io.Writer
}

func New() *App {
	return NewWithLogOutput(os.Stderr)
}

func NewWithLogOutput(w io.Writer) *App {
	return &App{logOut: w}
}

// Run loads the config, wires the bundle pipeline and runs it once.
func (a *App) Run(ctx context.Context, cfgPath string) (*entity.Report, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg

	level, err := logLevel(a.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a.log = slog.New(slog.NewTextHandler(a.logOut, &slog.HandlerOptions{Level: level})).With(slog.String("run", uuid.NewString()))

	lang, err := a.cfg.Language()
	if err != nil {
		return nil, err
	}

	renderer, err := tpladapter.NewTplAdapter(a.cfg.Path(a.cfg.TemplateFileName))
	if err != nil {
		return nil, fmt.Errorf("cannot load template: %w", err)
	}

	tree := fsadapter.NewFSAdapter(a.log)

	srv := bundle.NewBundleService(
		a.cfg,
		manifest.NewManifestAdapter(),
		tree,
		classify.New(lang, a.cfg.FixtureDirs),
		renderer,
		upstream.NewUpstreamRepository(&a.cfg.Upstream, tree, a.log),
		a.log,
	)

	a.log.Info("Start bundling", slog.String("dest_root", a.cfg.DestRoot))

	report, err := srv.Run(ctx)
	if err != nil {
		a.log.Error("Bundling failed", slog.Any("error", err))

		return nil, err
	}

	return report, nil
}

func logLevel(level string) (slog.Level, error) {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug, nil
	case config.LogLevelInfo:
		return slog.LevelInfo, nil
	case config.LogLevelWarn:
		return slog.LevelWarn, nil
	case config.LogLevelError:
		return slog.LevelError, nil
	}

	return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
}
