package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/usestring/malort/internal/analyze"
	"github.com/usestring/malort/internal/source"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeAnalysisError = "ANALYSIS_ERROR"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapAnalysisError converts an error from an analysis run to a coded error.
// Missing inputs are NOT_FOUND, bad documents are INVALID_INPUT and
// everything else is ANALYSIS_ERROR.
func WrapAnalysisError(err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}

	var docErr *analyze.DocumentError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		coded = &CodedError{
			Code:    ErrCodeNotFound,
			Message: "input path not found",
			Cause:   err,
		}
	case errors.As(err, &docErr):
		coded = &CodedError{
			Code:    ErrCodeInvalidInput,
			Message: fmt.Sprintf("malformed document %d in %s (set skip_malformed to continue past it)", docErr.Index, docErr.File),
			Cause:   err,
		}
	default:
		coded = &CodedError{
			Code:    ErrCodeAnalysisError,
			Message: "analysis failed",
			Cause:   err,
		}
	}

	slog.Warn("analysis error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)

	return coded
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// compileSelector compiles an optional jq selector as tool input.
func compileSelector(expr string) (*source.Selector, error) {
	if expr == "" {
		return nil, nil
	}
	sel, err := source.CompileSelector(expr)
	if err != nil {
		return nil, &CodedError{Code: ErrCodeInvalidInput, Message: "invalid selector", Cause: err}
	}
	return sel, nil
}
