package mcpsrv

import (
	"github.com/spf13/afero"

	"github.com/usestring/malort/internal/analyze"
	"github.com/usestring/malort/internal/cache"
	"github.com/usestring/malort/internal/config"
)

// Deps contains all dependencies available to custom tools.
// Custom tools see the same analyzer, run cache and data root as the
// builtin malort tools.
type Deps struct {
	Config   *config.Config
	FS       afero.Fs
	Analyzer *analyze.Analyzer
	Cache    *cache.ResultCache
}
