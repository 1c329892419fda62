package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/usestring/malort/internal/analyze"
	"github.com/usestring/malort/internal/cache"
	"github.com/usestring/malort/internal/config"
	"github.com/usestring/malort/pkg/typemap"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config *config.Config
	// FS is the filesystem tool paths resolve against, normally rooted at
	// Config.DataRoot.
	FS       afero.Fs
	Analyzer *analyze.Analyzer
	Cache    *cache.ResultCache

	flight singleflight.Group
}

// NewDeps builds the dependencies for cfg, confining file access to
// cfg.DataRoot.
func NewDeps(cfg *config.Config) (*Deps, error) {
	results, err := cache.NewResultCache(cfg.ResultCacheMaxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	fsys := afero.NewBasePathFs(afero.NewOsFs(), cfg.DataRoot)
	return &Deps{
		Config:   cfg,
		FS:       fsys,
		Analyzer: analyze.New(fsys),
		Cache:    results,
	}, nil
}

// Result looks up a cached analysis run.
func (d *Deps) Result(runID string) (*analyze.Result, error) {
	if runID == "" {
		return nil, ErrInvalidInput("run_id is required")
	}
	res, ok := d.Cache.Get(runID)
	if !ok {
		return nil, ErrNotFound("run", runID)
	}
	return res, nil
}

// Mapper resolves a column type mapper, defaulting to the configured one.
func (d *Deps) Mapper(name string) (typemap.Mapper, error) {
	if name == "" {
		name = d.Config.Mapper
	}
	m, err := typemap.Lookup(name)
	if err != nil {
		return nil, &CodedError{Code: ErrCodeInvalidInput, Message: "unknown mapper", Cause: err}
	}
	return m, nil
}

// Analyze runs an analysis. Concurrent calls for the same root and options
// share one run.
func (d *Deps) Analyze(ctx context.Context, root string, opts analyze.Options) (*analyze.Result, error) {
	selector := ""
	if opts.Selector != nil {
		selector = opts.Selector.String()
	}
	key := fmt.Sprintf("%s\x00%q\x00%t\x00%s\x00%t\x00%d\x00%d",
		root, opts.Delimiter, opts.ParseTimestamps, selector, opts.SkipMalformed, opts.Seed, opts.Workers)

	v, err, shared := d.flight.Do(key, func() (any, error) {
		return d.Analyzer.Analyze(ctx, root, opts)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("analysis shared with a concurrent call", slog.String("root", root))
	}
	return v.(*analyze.Result), nil
}
