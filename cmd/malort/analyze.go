package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/usestring/malort/internal/analyze"
	"github.com/usestring/malort/internal/report"
	"github.com/usestring/malort/internal/source"
	"github.com/usestring/malort/pkg/typemap"
)

// outputFlags are shared by the commands that print a report.
type outputFlags struct {
	mapper    string
	format    string
	output    string
	statsOut  string
	jsonpaths string
	schemaOut string
}

func (o *outputFlags) register(cmd *cobra.Command, defaultMapper string) {
	cmd.Flags().StringVar(&o.mapper, "mapper", defaultMapper, "column type mapper: "+strings.Join(typemap.Names(), ", "))
	cmd.Flags().StringVarP(&o.format, "format", "f", string(report.FormatTable), "report format: table, csv, json, yaml, parquet")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "report output path (defaults to stdout)")
	cmd.Flags().StringVar(&o.statsOut, "stats-out", "", "also save the statistics map as JSON to this path")
	cmd.Flags().StringVar(&o.jsonpaths, "jsonpaths", "", "also write the jsonpaths manifest to this path")
	cmd.Flags().StringVar(&o.schemaOut, "schema-out", "", "also write the JSON Schema of the documents to this path")
}

// analysisFlags configure a run of the analyzer.
type analysisFlags struct {
	opts         analyze.Options
	selector     string
	noTimestamps bool
}

func (a *app) newAnalysisFlags(cmd *cobra.Command) *analysisFlags {
	f := &analysisFlags{
		opts: analyze.Options{
			Delimiter:     a.cfg.Delimiter,
			Workers:       a.cfg.Workers,
			SkipMalformed: a.cfg.SkipMalformed,
			Seed:          a.cfg.Seed,
		},
		selector: a.cfg.Selector,
	}
	cmd.Flags().StringVarP(&f.opts.Delimiter, "delimiter", "d", f.opts.Delimiter, "document delimiter for files not ending in .json")
	cmd.Flags().BoolVar(&f.noTimestamps, "no-timestamps", !a.cfg.ParseTimestamps, "do not classify strings as datetimes")
	cmd.Flags().IntVarP(&f.opts.Workers, "workers", "w", f.opts.Workers, "files analyzed in parallel (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&f.opts.SkipMalformed, "skip-malformed", f.opts.SkipMalformed, "skip documents that are not valid JSON objects")
	cmd.Flags().StringVarP(&f.selector, "select", "s", f.selector, "jq expression selecting the records of each document")
	cmd.Flags().Uint64Var(&f.opts.Seed, "seed", f.opts.Seed, "seed for string sampling (0 = random)")
	return f
}

// run analyzes root with the parsed flags.
func (f *analysisFlags) run(cmd *cobra.Command, a *app, root string) (*analyze.Result, error) {
	opts := f.opts
	opts.ParseTimestamps = !f.noTimestamps
	if f.selector != "" {
		sel, err := source.CompileSelector(f.selector)
		if err != nil {
			return nil, err
		}
		opts.Selector = sel
	}

	res, err := analyze.New(a.fs).Analyze(cmd.Context(), root, opts)
	if err != nil {
		return nil, err
	}
	slog.Info("analyzed documents",
		slog.String("path", root),
		slog.Int64("documents", res.Count),
		slog.Int64("skipped", res.Skipped),
		slog.String("read", humanize.Bytes(uint64(res.Bytes))),
	)
	return res, nil
}

func (a *app) analyzeCmd() *cobra.Command {
	var (
		flags *analysisFlags
		out   outputFlags
	)
	cmd := &cobra.Command{
		Use:   "analyze PATH",
		Short: "collect per-field statistics for every JSON document under PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := flags.run(cmd, a, args[0])
			if err != nil {
				return err
			}
			return a.emit(cmd, res, &out)
		},
	}
	flags = a.newAnalysisFlags(cmd)
	out.register(cmd, a.cfg.Mapper)
	return cmd
}

// emit writes the report and the optional side outputs of a result.
func (a *app) emit(cmd *cobra.Command, res *analyze.Result, out *outputFlags) error {
	format, err := report.ParseFormat(out.format)
	if err != nil {
		return err
	}
	mapper, err := typemap.Lookup(out.mapper)
	if err != nil {
		return err
	}

	if out.statsOut != "" {
		err := a.writeTo(cmd, out.statsOut, func(w io.Writer) error {
			return writeJSON(w, res.Stats)
		})
		if err != nil {
			return fmt.Errorf("saving statistics: %w", err)
		}
	}
	if out.jsonpaths != "" {
		if err := a.writeTo(cmd, out.jsonpaths, res.WriteJSONPaths); err != nil {
			return fmt.Errorf("writing jsonpaths: %w", err)
		}
	}

	if out.schemaOut != "" {
		if err := a.writeTo(cmd, out.schemaOut, func(w io.Writer) error {
			return writeJSON(w, res.Schema(""))
		}); err != nil {
			return fmt.Errorf("writing schema: %w", err)
		}
	}

	rows := report.Rows(res.Stats, res.Profile, mapper)
	return a.writeTo(cmd, out.output, func(w io.Writer) error {
		return report.Write(w, format, rows)
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
