package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/usestring/malort/pkg/stats"
)

// Selector is a compiled jq program that picks the documents to analyze out
// of each input blob. Every value the program emits is one document.
type Selector struct {
	expr string
	code *gojq.Code
}

// CompileSelector parses and compiles a jq expression once for reuse.
// A compiled Selector is safe for concurrent use.
func CompileSelector(expression string) (*Selector, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}

	return &Selector{expr: expression, code: code}, nil
}

// String returns the source expression.
func (s *Selector) String() string {
	return s.expr
}

// Select runs the program against one JSON blob and returns the emitted
// values. Null results are dropped.
func (s *Selector) Select(data []byte) ([]stats.Value, error) {
	input, err := decodeGeneric(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON data: %w", err)
	}

	var out []stats.Value
	iter := s.code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := v.(error); isErr {
			return nil, errors.New(formatJQError(s.expr, err))
		}

		if v == nil {
			continue
		}

		doc, err := stats.FromAny(v)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}

	return out, nil
}

// decodeGeneric decodes data for gojq, which understands int and float64 but
// not json.Number. Integral literals stay ints so the integer/float
// distinction survives the program.
func decodeGeneric(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return normalizeNumbers(v), nil
}

func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		s := val.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := strconv.Atoi(s); err == nil {
				return i
			}
		}
		f, _ := val.Float64()
		return f
	case []any:
		for i := range val {
			val[i] = normalizeNumbers(val[i])
		}
		return val
	case map[string]any:
		for k := range val {
			val[k] = normalizeNumbers(val[k])
		}
		return val
	default:
		return v
	}
}

// formatJQError creates a helpful error message for JQ execution errors.
//
// Runtime jq errors (like "cannot iterate over: null") are plain errors
// without typed wrappers in gojq, so hints are chosen by message text.
func formatJQError(expr string, err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return fmt.Sprintf("selector %q: query halted", expr)
		}
		return fmt.Sprintf("selector %q: query halted with: %v", expr, haltErr.Value())
	}

	errStr := err.Error()

	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the path may not exist in this document)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	case strings.Contains(errStr, "array") && strings.Contains(errStr, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}

	return fmt.Sprintf("selector %q: %s%s", expr, errStr, hint)
}
