package bundle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jgivc/libmvbundle/internal/config"
	"github.com/jgivc/libmvbundle/internal/entity"
	"go.uber.org/multierr"
)

type ManifestReader interface {
	Read(fileName string) ([]entity.ManifestEntry, error)
}

type Tree interface {
	Verify(entries []entity.ManifestEntry, srcRoot string) error
	Clear(roots ...string) error
	Collect(entries []entity.ManifestEntry, srcRoot, dstRoot string) ([]entity.CopiedFile, error)
	Scan(base, root string, kind entity.Root) ([]entity.DiscoveredPath, error)
	WriteFileAtomic(name string, data []byte) error
}

type Classifier interface {
	Classify(paths []entity.DiscoveredPath) *entity.Classification
}

type Renderer interface {
	Render(c *entity.Classification) ([]byte, error)
}

type Upstream interface {
	Checkout(ctx context.Context) (*entity.Snapshot, error)
	Release(snapshot *entity.Snapshot) error
	WriteChangelog(ctx context.Context, snapshot *entity.Snapshot, fileName string) error
}

type BundleService struct {
	cfg        *config.Config
	manifest   ManifestReader
	tree       Tree
	classifier Classifier
	renderer   Renderer
	upstream   Upstream
	log        *slog.Logger
}

func NewBundleService(cfg *config.Config, manifest ManifestReader, tree Tree, classifier Classifier,
	renderer Renderer, upstream Upstream, log *slog.Logger) *BundleService {
	return &BundleService{
		cfg:        cfg,
		manifest:   manifest,
		tree:       tree,
		classifier: classifier,
		renderer:   renderer,
		upstream:   upstream,
		log:        log.With(slog.String("item", "BundleService")),
	}
}

// Run vendors the manifest files and regenerates the descriptor. Stages run
// strictly in order; any failure aborts the run.
func (s *BundleService) Run(ctx context.Context) (report *entity.Report, err error) {
	entries, err := s.manifest.Read(s.cfg.ManifestPath())
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest: %w", err)
	}
	s.log.Info("Manifest loaded", slog.Int("entries", len(entries)))

	report = &entity.Report{
		SourceRoot: s.cfg.SourceRoot,
		Output:     s.cfg.OutputPath(),
	}

	var snapshot *entity.Snapshot
	if report.SourceRoot == "" {
		snapshot, err = s.upstream.Checkout(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot checkout upstream: %w", err)
		}
		defer func() {
			if relErr := s.upstream.Release(snapshot); relErr != nil {
				err = multierr.Append(err, fmt.Errorf("cannot release upstream checkout: %w", relErr))
			}
		}()

		report.SourceRoot = snapshot.Root
		report.Revision = snapshot.Revision
	}

	if err := s.tree.Verify(entries, report.SourceRoot); err != nil {
		return nil, fmt.Errorf("cannot verify manifest: %w", err)
	}

	if snapshot != nil {
		if err := s.upstream.WriteChangelog(ctx, snapshot, s.cfg.ChangelogPath()); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	primaryRoot, thirdPartyRoot := s.cfg.PrimaryRoot(), s.cfg.ThirdPartyRoot()
	if err := s.tree.Clear(primaryRoot, thirdPartyRoot); err != nil {
		return nil, fmt.Errorf("cannot clear destination: %w", err)
	}

	report.Copied, err = s.tree.Collect(entries, report.SourceRoot, s.cfg.DestRoot)
	if err != nil {
		return nil, fmt.Errorf("cannot collect sources: %w", err)
	}
	s.log.Info("Sources collected", slog.Int("files", len(report.Copied)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	primary, err := s.tree.Scan(s.cfg.DestRoot, primaryRoot, entity.RootPrimary)
	if err != nil {
		return nil, fmt.Errorf("cannot scan primary root: %w", err)
	}

	thirdParty, err := s.tree.Scan(s.cfg.DestRoot, thirdPartyRoot, entity.RootThirdParty)
	if err != nil {
		return nil, fmt.Errorf("cannot scan third party root: %w", err)
	}

	report.Classification = s.classifier.Classify(append(primary, thirdParty...))
	s.log.Info("Tree classified",
		slog.Int("sources", len(report.Classification.Sources)),
		slog.Int("headers", len(report.Classification.Headers)),
		slog.Int("third_party_sources", len(report.Classification.ThirdPartySources)),
		slog.Int("third_party_headers", len(report.Classification.ThirdPartyHeaders)),
		slog.Int("tests", len(report.Classification.Tests)),
	)

	content, err := s.renderer.Render(report.Classification)
	if err != nil {
		return nil, fmt.Errorf("cannot render descriptor: %w", err)
	}

	if err := s.tree.WriteFileAtomic(report.Output, content); err != nil {
		return nil, fmt.Errorf("cannot write descriptor: %w", err)
	}
	s.log.Info("Descriptor written", slog.String("path", report.Output))

	return report, nil
}
