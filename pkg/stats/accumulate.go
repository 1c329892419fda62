package stats

import (
	"math"
	"math/rand/v2"
	"strconv"
	"unicode/utf8"
)

// SampleSize is the capacity of a string sample reservoir.
const SampleSize = 3

// Accumulator folds single observations into TypeStats.
type Accumulator struct {
	// Rand drives sample eviction. Nil uses the process-wide source.
	Rand *rand.Rand
}

// Update returns the statistics for tag after observing v, given the
// current statistics (nil when the tag has not been seen at this path).
// current is never modified.
//
// For strings the numeric attributes track the length in code points.
// Datetimes and booleans only count. The sample keeps up to SampleSize
// strings; once full, a coin flip decides whether the oldest entry is
// dropped in favour of v.
func (a *Accumulator) Update(v Value, tag Tag, current *TypeStats) *TypeStats {
	next := current.Clone()
	if next == nil {
		next = &TypeStats{}
	}

	switch tag {
	case TagString:
		length := int64(utf8.RuneCountInString(v.Str))
		a.observe(next, IntNumber(length))
		next.Sample = a.addSample(next.Sample, v.Str)
	case TagInteger:
		a.observe(next, IntNumber(v.Int))
	case TagFloat:
		a.observe(next, FloatNumber(v.Float))
		observeShape(next, v.Float)
	}

	next.Count++
	return next
}

// observe updates mean, max and min. It must run before Count is incremented.
func (a *Accumulator) observe(s *TypeStats, n Number) {
	var mean float64
	if s.Mean != nil {
		mean = *s.Mean
	}
	s.Mean = ptr(round3((mean*float64(s.Count) + n.Float64()) / float64(s.Count+1)))

	if s.Max == nil || s.Max.Less(n) {
		s.Max = ptr(n)
	}
	if s.Min == nil || n.Less(*s.Min) {
		s.Min = ptr(n)
	}
}

func (a *Accumulator) addSample(sample []string, s string) []string {
	if len(sample) < SampleSize {
		return append(sample, s)
	}
	if a.coin() {
		return append(sample[1:], s)
	}
	return sample
}

func (a *Accumulator) coin() bool {
	if a.Rand != nil {
		return a.Rand.IntN(2) == 1
	}
	return rand.IntN(2) == 1
}

func observeShape(s *TypeStats, f float64) {
	precision, scale := DecimalShape(f)

	if s.MaxPrecision == nil {
		s.MaxPrecision = ptr(precision)
		s.MaxScale = ptr(scale)
		s.FixedLength = ptr(true)
		return
	}

	if precision != *s.MaxPrecision || scale != *s.MaxScale {
		s.FixedLength = ptr(false)
	}
	if precision > *s.MaxPrecision {
		s.MaxPrecision = ptr(precision)
	}
	if s.MaxScale == nil || scale > *s.MaxScale {
		s.MaxScale = ptr(scale)
	}
	if s.FixedLength == nil {
		s.FixedLength = ptr(false)
	}
}

// round3 rounds f to three decimal places.
func round3(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 3, 64), 64)
	if err != nil {
		return f
	}
	return r
}
