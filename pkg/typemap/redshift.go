package typemap

import (
	"fmt"
	"math"

	"github.com/usestring/malort/pkg/stats"
)

const (
	// TooLargeForChar is reported for strings longer than any Redshift char type.
	TooLargeForChar = "Too large for any char column!"

	redshiftMaxChar      = 65535
	redshiftMaxPrecision = 38
	redshiftMaxScale     = 37
	realMaxPrecision     = 6
)

var booleanTokens = map[string]bool{
	"TRUE": true, "true": true, "t": true, "y": true, "yes": true,
	"FALSE": true, "false": true, "f": true, "n": true, "no": true,
}

// Redshift maps statistics to Amazon Redshift column types.
type Redshift struct{}

func (Redshift) Name() string { return "redshift" }

func (Redshift) Booleans(*stats.TypeStats) string { return "BOOLEAN" }

func (Redshift) Strings(s *stats.TypeStats) string {
	return stringType(s, redshiftMaxChar, TooLargeForChar)
}

func (Redshift) Ints(s *stats.TypeStats) string { return intType(s) }

func (Redshift) Floats(s *stats.TypeStats) string {
	precision, scale, fixed := floatShape(s)
	switch {
	case fixed && precision <= redshiftMaxPrecision && scale <= redshiftMaxScale:
		return fmt.Sprintf("decimal(%d, %d)", precision, scale)
	case precision <= realMaxPrecision:
		return "REAL"
	default:
		return "FLOAT"
	}
}

func (Redshift) Dates(*stats.TypeStats) string { return "TIMESTAMP" }

// stringType is shared by the mappers: boolean-looking samples first, then
// fixed-width char, then varchar up to limit.
func stringType(s *stats.TypeStats, limit int64, tooLarge string) string {
	if looksBoolean(s.Sample) {
		return "BOOLEAN"
	}

	var minLen, maxLen int64
	if s.Min != nil {
		minLen = s.Min.Int64()
	}
	if s.Max != nil {
		maxLen = s.Max.Int64()
	}

	if s.Mean != nil && minLen == maxLen && float64(maxLen) == math.RoundToEven(*s.Mean) {
		return fmt.Sprintf("char(%d)", maxLen)
	}
	if maxLen > limit {
		return tooLarge
	}
	return fmt.Sprintf("varchar(%d)", maxLen)
}

func looksBoolean(sample []string) bool {
	if len(sample) == 0 {
		return false
	}
	for _, s := range sample {
		if !booleanTokens[s] {
			return false
		}
	}
	return true
}

func intType(s *stats.TypeStats) string {
	var minVal, maxVal int64
	if s.Min != nil {
		minVal = s.Min.Int64()
	}
	if s.Max != nil {
		maxVal = s.Max.Int64()
	}

	switch {
	case minVal > math.MinInt16 && maxVal < math.MaxInt16:
		return "SMALLINT"
	case minVal > math.MinInt32 && maxVal < math.MaxInt32:
		return "INTEGER"
	default:
		return "BIGINT"
	}
}

func floatShape(s *stats.TypeStats) (precision, scale int, fixed bool) {
	if s.MaxPrecision != nil {
		precision = *s.MaxPrecision
	}
	if s.MaxScale != nil {
		scale = *s.MaxScale
	}
	fixed = s.FixedLength != nil && *s.FixedLength
	return precision, scale, fixed
}
