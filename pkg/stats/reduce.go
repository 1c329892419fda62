package stats

import (
	"math/rand/v2"
)

// Reducer merges independently built statistics maps. Merging is associative
// and commutative for count, mean, max, min and the float shape attributes,
// so partitions can be combined in any order or tree shape.
type Reducer struct {
	// Rand drives sample selection. Nil uses the process-wide source.
	Rand *rand.Rand
}

// Combine returns a new map holding a merged with b. Neither input is modified.
func (r *Reducer) Combine(a, b Map) Map {
	out := a.Clone()
	r.Merge(out, b)
	return out
}

// Merge folds src into dst. dst must be owned by the caller; src is only read.
func (r *Reducer) Merge(dst, src Map) {
	for path, in := range src {
		cur, ok := dst[path]
		if !ok {
			dst[path] = in.Clone()
			continue
		}
		if cur.BaseKey == "" {
			cur.BaseKey = in.BaseKey
		}
		for tag, s := range in.Types {
			existing, ok := cur.Types[tag]
			if !ok {
				cur.Types[tag] = s.Clone()
				continue
			}
			cur.Types[tag] = r.mergeTypeStats(existing, s)
		}
	}
}

func (r *Reducer) mergeTypeStats(a, b *TypeStats) *TypeStats {
	out := &TypeStats{Count: a.Count + b.Count}

	switch {
	case a.Mean != nil && b.Mean != nil && out.Count > 0:
		out.Mean = ptr(round3((*a.Mean*float64(a.Count) + *b.Mean*float64(b.Count)) / float64(out.Count)))
	case a.Mean != nil:
		out.Mean = ptr(*a.Mean)
	case b.Mean != nil:
		out.Mean = ptr(*b.Mean)
	}

	out.Max = maxNumber(a.Max, b.Max)
	out.Min = minNumber(a.Min, b.Min)

	out.MaxPrecision = maxInt(a.MaxPrecision, b.MaxPrecision)
	out.MaxScale = maxInt(a.MaxScale, b.MaxScale)
	if a.FixedLength != nil || b.FixedLength != nil {
		fixed := (a.FixedLength == nil || *a.FixedLength) &&
			(b.FixedLength == nil || *b.FixedLength) &&
			equalInt(a.MaxPrecision, b.MaxPrecision) &&
			equalInt(a.MaxScale, b.MaxScale)
		out.FixedLength = ptr(fixed)
	}

	if a.Sample != nil || b.Sample != nil {
		out.Sample = r.sample(a.Sample, b.Sample)
	}
	return out
}

// sample draws min(len(a)+len(b), SampleSize) entries uniformly without
// replacement from the union of both reservoirs.
func (r *Reducer) sample(a, b []string) []string {
	pool := make([]string, 0, len(a)+len(b))
	pool = append(pool, a...)
	pool = append(pool, b...)

	n := min(len(pool), SampleSize)
	var perm []int
	if r.Rand != nil {
		perm = r.Rand.Perm(len(pool))
	} else {
		perm = rand.Perm(len(pool))
	}

	out := make([]string, n)
	for i := range n {
		out[i] = pool[perm[i]]
	}
	return out
}

func maxNumber(a, b *Number) *Number {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return ptr(*b)
	case b == nil || !a.Less(*b):
		return ptr(*a)
	default:
		return ptr(*b)
	}
}

func minNumber(a, b *Number) *Number {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return ptr(*b)
	case b == nil || !b.Less(*a):
		return ptr(*a)
	default:
		return ptr(*b)
	}
}

func maxInt(a, b *int) *int {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return ptr(*b)
	case b == nil || *a >= *b:
		return ptr(*a)
	default:
		return ptr(*b)
	}
}

// equalInt treats a missing side as agreeing with the other.
func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return true
	}
	return *a == *b
}
