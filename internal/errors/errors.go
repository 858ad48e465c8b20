package errors

import (
	"errors"
	"fmt"
)

// Kind classifies application errors into the handful of failure modes the
// pipeline distinguishes. Row-level rejections are not errors of this kind;
// they are recovered inside the cleaning stage and surfaced as a drop count.
type Kind string

const (
	// KindInputNotFound indicates a source file or table is missing.
	// Processing for that input halts; the caller decides the fallback.
	KindInputNotFound Kind = "INPUT_NOT_FOUND"
	// KindMalformedMapping indicates the caller-supplied field mapping
	// references a column absent from the input. Fatal for that call.
	KindMalformedMapping Kind = "MALFORMED_MAPPING"
	// KindParsing indicates an input could not be read as delimited text
	KindParsing Kind = "PARSING"
	// KindExport indicates a result set could not be written out
	KindExport Kind = "EXPORT"
	// KindConfig indicates invalid configuration
	KindConfig Kind = "CONFIG"
)

// AppError represents an application-specific error with a classified kind
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new application error
func New(kind Kind, message string, cause error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// NewInputNotFound creates an input-not-found error for the given source
func NewInputNotFound(source string, cause error) *AppError {
	return New(KindInputNotFound, fmt.Sprintf("input %s not found", source), cause).
		WithContext("source", source)
}

// NewMalformedMapping creates a malformed-mapping error naming the missing column
func NewMalformedMapping(column string) *AppError {
	return New(KindMalformedMapping, fmt.Sprintf("mapped column %q not present in input", column), nil).
		WithContext("column", column)
}

// NewParsingError creates a parsing error
func NewParsingError(message string, cause error) *AppError {
	return New(KindParsing, message, cause)
}

// NewExportError creates an export error
func NewExportError(message string, cause error) *AppError {
	return New(KindExport, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return New(KindConfig, message, cause)
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
