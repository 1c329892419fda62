package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/usestring/malort/internal/ddl"
	"github.com/usestring/malort/pkg/manifest"
	"github.com/usestring/malort/pkg/typemap"
)

func (a *app) ddlCmd() *cobra.Command {
	var (
		flags     *analysisFlags
		table     string
		mapper    = a.cfg.Mapper
		output    string
		jsonpaths string
	)
	cmd := &cobra.Command{
		Use:   "ddl PATH",
		Short: "print a CREATE TABLE statement for the JSON documents under PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := typemap.Lookup(mapper)
			if err != nil {
				return err
			}
			res, err := flags.run(cmd, a, args[0])
			if err != nil {
				return err
			}

			t, sql, err := ddl.Generate(table, res.Stats, m)
			if err != nil {
				return err
			}
			for _, s := range t.Skipped {
				slog.Warn("field left out of table", slog.String("path", s.Path), slog.String("reason", s.Reason))
			}

			if jsonpaths != "" {
				paths := make([]string, len(t.Columns))
				for i, c := range t.Columns {
					paths[i] = c.Path
				}
				err := a.writeTo(cmd, jsonpaths, func(w io.Writer) error {
					return manifest.Write(w, paths)
				})
				if err != nil {
					return fmt.Errorf("writing jsonpaths: %w", err)
				}
			}
			return a.writeTo(cmd, output, func(w io.Writer) error {
				_, err := io.WriteString(w, sql)
				return err
			})
		},
	}
	flags = a.newAnalysisFlags(cmd)
	cmd.Flags().StringVarP(&table, "table", "t", "", "table name, optionally schema-qualified (required)")
	cmd.Flags().StringVar(&mapper, "mapper", mapper, "column type mapper: "+strings.Join(typemap.Names(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "SQL output path (defaults to stdout)")
	cmd.Flags().StringVar(&jsonpaths, "jsonpaths", "", "also write the jsonpaths manifest to this path")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}
