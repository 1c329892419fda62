package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Canonical renders v as JSON text with ", " and ": " separators and
// ASCII-only escapes. This is the text recorded when a list of scalars
// collapses into a single string observation, so its length is part of the
// statistics contract.
func Canonical(v Value) string {
	var b strings.Builder
	writeCanonical(&b, v)
	return b.String()
}

func writeCanonical(b *strings.Builder, v Value) {
	switch v.Kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindInt:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case KindFloat:
		b.WriteString(FormatFloat(v.Float))
	case KindString:
		writeASCIIString(b, v.Str)
	case KindArray:
		b.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			writeCanonical(b, item)
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			writeASCIIString(b, f.Key)
			b.WriteString(": ")
			writeCanonical(b, f.Value)
		}
		b.WriteByte('}')
	}
}

func writeASCIIString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				b.WriteRune(r)
			case r < 0x10000:
				fmt.Fprintf(b, `\u%04x`, r)
			default:
				r -= 0x10000
				fmt.Fprintf(b, `\u%04x\u%04x`, 0xd800+(r>>10), 0xdc00+(r&0x3ff))
			}
		}
	}
	b.WriteByte('"')
}

// FormatFloat returns the shortest text that round-trips f. Values print in
// positional notation with at least one fractional digit unless the decimal
// exponent is below -4 or at least 16, where scientific notation is used.
func FormatFloat(f float64) string {
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	if exp := decimalExponent(sci); exp < -4 || exp >= 16 {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func decimalExponent(sci string) int {
	i := strings.IndexByte(sci, 'e')
	if i < 0 {
		return 0
	}
	exp, _ := strconv.Atoi(sci[i+1:])
	return exp
}

// DecimalShape returns the precision (significant digits) and scale
// (fractional digits) of f's shortest decimal text. Positive exponents are
// expanded on purpose, so 1.5e+16 has precision 17 and scale 0 rather than
// the exponent form's precision 2 and scale 15.
func DecimalShape(f float64) (precision, scale int) {
	text := strings.TrimPrefix(FormatFloat(f), "-")

	mantissa, exp := text, 0
	if i := strings.IndexByte(text, 'e'); i >= 0 {
		mantissa = text[:i]
		exp, _ = strconv.Atoi(text[i+1:])
	}

	intPart, fracPart := mantissa, ""
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		intPart, fracPart = mantissa[:i], mantissa[i+1:]
	}

	digits := strings.TrimLeft(intPart+fracPart, "0")
	if digits == "" {
		digits = "0"
	}

	exponent := exp - len(fracPart)
	if exponent > 0 {
		return len(digits) + exponent, 0
	}
	return len(digits), -exponent
}
