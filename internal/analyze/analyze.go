// Package analyze drives a full statistics run over an input directory.
//
// Every file is a partition: it is walked on its own goroutine into a private
// statistics map and profile, with no shared mutable state. Partitions are
// then combined pairwise, round by round, into a single result.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/usestring/malort/internal/source"
	"github.com/usestring/malort/pkg/profile"
	"github.com/usestring/malort/pkg/stats"
)

// Options controls an analysis run.
type Options struct {
	// Delimiter separates documents in non-.json files. Default: "\n".
	Delimiter string
	// ParseTimestamps promotes ISO-8601 strings to datetimes.
	ParseTimestamps bool
	// Workers bounds concurrent partitions. Default: GOMAXPROCS.
	Workers int
	// SkipMalformed logs and counts undecodable or unwalkable documents
	// instead of failing the run.
	SkipMalformed bool
	// Selector, when set, picks the documents out of every raw blob.
	Selector *source.Selector
	// Seed makes sampling reproducible when non-zero.
	Seed uint64
}

// DefaultOptions returns the options of a plain run.
func DefaultOptions() Options {
	return Options{
		Delimiter:       source.DefaultDelimiter,
		ParseTimestamps: true,
	}
}

// DocumentError reports a document that could not be decoded or walked.
type DocumentError struct {
	File  string
	Index int
	Err   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: document %d: %v", e.File, e.Index, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Analyzer runs analyses against a filesystem.
type Analyzer struct {
	fs afero.Fs
}

// New creates an analyzer reading from fsys.
func New(fsys afero.Fs) *Analyzer {
	return &Analyzer{fs: fsys}
}

// partition is the private state of one file's walk.
type partition struct {
	stats   stats.Map
	profile *profile.Profile
	count   int64
	skipped int64
	bytes   int64
}

// Analyze walks every document under root and returns the combined result.
func (a *Analyzer) Analyze(ctx context.Context, root string, opts Options) (*Result, error) {
	start := time.Now()
	opts = withDefaults(opts)

	files, err := source.List(a.fs, root)
	if err != nil {
		return nil, err
	}

	parts := make([]*partition, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i := range files {
		g.Go(func() error {
			p, err := a.walkFile(ctx, &files[i], opts)
			if err != nil {
				return err
			}
			parts[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := reduce(ctx, parts, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Root:    root,
		Stats:   merged.stats,
		Profile: merged.profile,
		Count:   merged.count,
		Skipped: merged.skipped,
		Files:   len(files),
		Bytes:   merged.bytes,
		Elapsed: time.Since(start),
	}

	slog.Info("malort run finished",
		slog.String("root", root),
		slog.Int64("documents", res.Count),
		slog.Int64("skipped", res.Skipped),
		slog.Int("files", res.Files),
		slog.String("bytes", humanize.Bytes(uint64(res.Bytes))),
		slog.Int("fields", len(res.Stats)),
		slog.Duration("elapsed", res.Elapsed),
	)

	return res, nil
}

func (a *Analyzer) walkFile(ctx context.Context, file *source.File, opts Options) (*partition, error) {
	p := &partition{
		stats:   stats.NewMap(),
		profile: profile.New(),
		bytes:   file.Size,
	}

	w := stats.NewWalker(opts.ParseTimestamps)
	w.Observer = p.profile
	if opts.Seed != 0 {
		w.Accumulator.Rand = rand.New(rand.NewPCG(opts.Seed, uint64(file.Index)))
	}

	ordinal := 0
	err := source.Read(a.fs, file, opts.Delimiter, func(doc source.Document) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		values, err := source.Parse(doc.Data, opts.Selector)
		if err != nil {
			return p.malformed(file, doc.Index, err, opts)
		}

		for _, v := range values {
			if err := stats.Check(v); err != nil {
				if err := p.malformed(file, doc.Index, err, opts); err != nil {
					return err
				}
				continue
			}
			p.profile.Begin(profile.Ordinal(file.Index, ordinal))
			ordinal++
			if err := w.Walk(v, p.stats); err != nil {
				return &DocumentError{File: file.Name, Index: doc.Index, Err: err}
			}
			p.count++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("partition walked",
		slog.String("file", file.Name),
		slog.Int64("documents", p.count),
		slog.Int64("skipped", p.skipped),
		slog.Int("fields", len(p.stats)),
	)
	return p, nil
}

func (p *partition) malformed(file *source.File, index int, err error, opts Options) error {
	docErr := &DocumentError{File: file.Name, Index: index, Err: err}
	if !opts.SkipMalformed {
		return docErr
	}
	slog.Warn("skipping malformed document",
		slog.String("file", file.Name),
		slog.Int("index", index),
		slog.String("error", err.Error()),
	)
	p.skipped++
	return nil
}

// reduce merges partitions pairwise in rounds until one remains. Each round
// runs its merges concurrently; every merge owns its left operand.
func reduce(ctx context.Context, parts []*partition, opts Options) (*partition, error) {
	if len(parts) == 0 {
		return &partition{stats: stats.NewMap(), profile: profile.New()}, nil
	}

	for round := 0; len(parts) > 1; round++ {
		next := make([]*partition, (len(parts)+1)/2)

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)

		for i := 0; i < len(parts); i += 2 {
			if i+1 == len(parts) {
				next[i/2] = parts[i]
				continue
			}
			left, right := parts[i], parts[i+1]
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				var r stats.Reducer
				if opts.Seed != 0 {
					r.Rand = rand.New(rand.NewPCG(opts.Seed, uint64(round)<<32|uint64(i)))
				}
				r.Merge(left.stats, right.stats)
				if err := left.profile.Merge(right.profile); err != nil {
					return fmt.Errorf("merging profiles: %w", err)
				}
				left.count += right.count
				left.skipped += right.skipped
				left.bytes += right.bytes
				next[i/2] = left
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
		parts = next
	}
	return parts[0], nil
}

// Combine reduces saved statistics maps into one result the same way
// partitions of a run are reduced. The inputs are not modified.
func Combine(ctx context.Context, maps []stats.Map, opts Options) (*Result, error) {
	start := time.Now()
	opts = withDefaults(opts)

	parts := make([]*partition, len(maps))
	for i, m := range maps {
		parts[i] = &partition{stats: m.Clone(), profile: profile.New()}
	}

	merged, err := reduce(ctx, parts, opts)
	if err != nil {
		return nil, err
	}
	return &Result{
		Stats:   merged.stats,
		Files:   len(maps),
		Elapsed: time.Since(start),
	}, nil
}

// IsMalformed reports whether err was caused by a bad input document.
func IsMalformed(err error) bool {
	var docErr *DocumentError
	return errors.As(err, &docErr)
}

func withDefaults(opts Options) Options {
	if opts.Delimiter == "" {
		opts.Delimiter = source.DefaultDelimiter
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return opts
}
