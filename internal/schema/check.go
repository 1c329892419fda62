package schema

import (
	"context"
	"log/slog"
	"runtime"
	"sort"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/usestring/malort/internal/source"
)

// CheckOptions controls a directory check.
type CheckOptions struct {
	Delimiter string
	Selector  *source.Selector
	Workers   int
	// MaxFailures caps the failures listed in the report. Default: 20
	MaxFailures int
}

// Failure is one document that did not match.
type Failure struct {
	File   string   `json:"file" yaml:"file"`
	Index  int      `json:"index" yaml:"index"`
	Errors []string `json:"errors" yaml:"errors"`
}

// CommonError is a validation error shared by several documents.
type CommonError struct {
	Error     string `json:"error" yaml:"error"`
	Frequency int    `json:"frequency" yaml:"frequency"`
}

// Report summarizes a directory check.
type Report struct {
	Documents    int           `json:"documents" yaml:"documents"`
	Matching     int           `json:"matching" yaml:"matching"`
	Failed       int           `json:"failed" yaml:"failed"`
	Malformed    int           `json:"malformed" yaml:"malformed"`
	Failures     []Failure     `json:"failures,omitempty" yaml:"failures,omitempty"`
	CommonErrors []CommonError `json:"common_errors,omitempty" yaml:"common_errors,omitempty"`
}

// AllMatch reports whether every document matched.
func (r *Report) AllMatch() bool {
	return r.Failed == 0 && r.Malformed == 0
}

type fileReport struct {
	Report
	errorCounts map[string]int
}

// Check validates every document under root. Documents that do not parse
// are counted as malformed rather than aborting the check.
func Check(ctx context.Context, fsys afero.Fs, root string, v *Validator, opts CheckOptions) (*Report, error) {
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 20
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	files, err := source.List(fsys, root)
	if err != nil {
		return nil, err
	}

	reports := make([]*fileReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range files {
		g.Go(func() error {
			r, err := checkFile(ctx, fsys, &files[i], v, opts)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Report{}
	counts := make(map[string]int)
	for _, r := range reports {
		out.Documents += r.Documents
		out.Matching += r.Matching
		out.Failed += r.Failed
		out.Malformed += r.Malformed
		for _, f := range r.Failures {
			if len(out.Failures) < opts.MaxFailures {
				out.Failures = append(out.Failures, f)
			}
		}
		for msg, n := range r.errorCounts {
			counts[msg] += n
		}
	}
	out.CommonErrors = commonErrors(counts)

	slog.Info("schema check finished",
		slog.String("root", root),
		slog.Int("documents", out.Documents),
		slog.Int("failed", out.Failed),
		slog.Int("malformed", out.Malformed),
	)
	return out, nil
}

func checkFile(ctx context.Context, fsys afero.Fs, file *source.File, v *Validator, opts CheckOptions) (*fileReport, error) {
	r := &fileReport{errorCounts: make(map[string]int)}
	err := source.Read(fsys, file, opts.Delimiter, func(doc source.Document) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		values, err := source.Parse(doc.Data, opts.Selector)
		if err != nil {
			r.Documents++
			r.Malformed++
			r.fail(file, doc.Index, []string{err.Error()}, opts)
			return nil
		}
		for _, value := range values {
			r.Documents++
			res := v.Validate(value)
			if res.Valid {
				r.Matching++
				continue
			}
			r.Failed++
			r.fail(file, doc.Index, res.Errors, opts)
			for _, msg := range res.Errors {
				r.errorCounts[msg]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *fileReport) fail(file *source.File, index int, errs []string, opts CheckOptions) {
	if len(r.Failures) < opts.MaxFailures {
		r.Failures = append(r.Failures, Failure{File: file.Name, Index: index, Errors: errs})
	}
}

// commonErrors lists errors seen in more than one document, most frequent
// first.
func commonErrors(counts map[string]int) []CommonError {
	var out []CommonError
	for msg, n := range counts {
		if n > 1 {
			out = append(out, CommonError{Error: msg, Frequency: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Error < out[j].Error
	})
	return out
}
