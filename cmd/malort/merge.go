package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/usestring/malort/internal/analyze"
	"github.com/usestring/malort/pkg/stats"
)

func (a *app) mergeCmd() *cobra.Command {
	var (
		out  outputFlags
		seed = a.cfg.Seed
	)
	cmd := &cobra.Command{
		Use:   "merge STATS.json...",
		Short: "combine statistics maps saved with analyze --stats-out",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			maps := make([]stats.Map, 0, len(args))
			for _, path := range args {
				m, err := a.loadStats(path)
				if err != nil {
					return err
				}
				maps = append(maps, m)
			}

			res, err := analyze.Combine(cmd.Context(), maps, analyze.Options{Seed: seed, Workers: a.cfg.Workers})
			if err != nil {
				return err
			}
			return a.emit(cmd, res, &out)
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", seed, "seed for string sampling (0 = random)")
	out.register(cmd, a.cfg.Mapper)
	return cmd
}

func (a *app) loadStats(path string) (stats.Map, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, err
	}
	m := stats.NewMap()
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return m, nil
}
