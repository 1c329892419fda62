package main

import (
	"errors"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/usestring/malort/internal/schema"
	"github.com/usestring/malort/internal/source"
)

// errMismatch makes the command exit non-zero after printing its report.
var errMismatch = errors.New("documents do not match the schema")

func (a *app) validateCmd() *cobra.Command {
	var (
		schemaPath  string
		delimiter   = a.cfg.Delimiter
		selector    = a.cfg.Selector
		maxFailures int
	)
	cmd := &cobra.Command{
		Use:   "validate PATH",
		Short: "check the JSON documents under PATH against a JSON Schema (see analyze --schema-out)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := afero.ReadFile(a.fs, schemaPath)
			if err != nil {
				return err
			}
			v, err := schema.NewValidator(data)
			if err != nil {
				return err
			}
			opts := schema.CheckOptions{
				Delimiter:   delimiter,
				Workers:     a.cfg.Workers,
				MaxFailures: maxFailures,
			}
			if selector != "" {
				if opts.Selector, err = source.CompileSelector(selector); err != nil {
					return err
				}
			}

			report, err := schema.Check(cmd.Context(), a.fs, args[0], v, opts)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(report); err != nil {
				return err
			}
			if err := enc.Close(); err != nil {
				return err
			}
			if !report.AllMatch() {
				return errMismatch
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "JSON Schema file (required)")
	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", delimiter, "document delimiter for files not ending in .json")
	cmd.Flags().StringVarP(&selector, "select", "s", selector, "jq expression selecting the records of each document")
	cmd.Flags().IntVar(&maxFailures, "max-failures", 20, "failing documents listed in the report")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}
