package typemap

import (
	"fmt"

	"github.com/usestring/malort/pkg/stats"
)

const (
	postgresMaxVarchar   = 10485760
	postgresMaxPrecision = 1000
)

// Postgres maps statistics to PostgreSQL column types.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Booleans(*stats.TypeStats) string { return "BOOLEAN" }

// Strings falls back to text where Redshift would give up.
func (Postgres) Strings(s *stats.TypeStats) string {
	return stringType(s, postgresMaxVarchar, "text")
}

func (Postgres) Ints(s *stats.TypeStats) string { return intType(s) }

func (Postgres) Floats(s *stats.TypeStats) string {
	precision, scale, fixed := floatShape(s)
	switch {
	case fixed && precision <= postgresMaxPrecision && scale <= precision:
		return fmt.Sprintf("numeric(%d, %d)", precision, scale)
	case precision <= realMaxPrecision:
		return "real"
	default:
		return "double precision"
	}
}

func (Postgres) Dates(*stats.TypeStats) string { return "timestamp" }
