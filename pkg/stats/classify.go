package stats

import (
	"github.com/dlclark/regexp2"
)

// iso8601Regex matches ISO-8601 calendar, ordinal and week dates with an
// optional time, fractional seconds and zone designator. It needs lookahead
// and a backreference to the time separator, which RE2 cannot express.
var iso8601Regex = regexp2.MustCompile(
	`^([\+-]?\d{4}(?!\d{2}\b))((-?)((0[1-9]|1[0-2])(\3([12]\d|0[1-9]|3[01]))?|W([0-4]\d|5[0-2])(-?[1-7])?|(00[1-9]|0[1-9]\d|[12]\d{2}|3([0-5]\d|6[1-6])))([T\s]((([01]\d|2[0-3])((:?)[0-5]\d)?|24\:?00)([\.,]\d+(?!:))?)?(\17[0-5]\d([\.,]\d+)?)?([zZ]|([\+-])([01]\d|2[0-3]):?([0-5]\d)?)?)?)?$`,
	regexp2.None,
)

// IsDatetime reports whether s is an ISO-8601 date or date-time.
func IsDatetime(s string) bool {
	ok, err := iso8601Regex.MatchString(s)
	return err == nil && ok
}

// Classifier assigns type tags to scalar values.
type Classifier struct {
	// ParseTimestamps promotes ISO-8601 strings to TagDatetime.
	ParseTimestamps bool
}

// Classify returns the tag for a scalar value. The second result is false
// for nulls and containers, which carry no tag.
func (c Classifier) Classify(v Value) (Tag, bool) {
	switch v.Kind {
	case KindBool:
		return TagBoolean, true
	case KindInt:
		return TagInteger, true
	case KindFloat:
		return TagFloat, true
	case KindString:
		if c.ParseTimestamps && IsDatetime(v.Str) {
			return TagDatetime, true
		}
		return TagString, true
	default:
		return "", false
	}
}
