package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeMalformed  ErrorType = "malformed"
	ErrorTypeUnresolved ErrorType = "unresolved"
	ErrorTypeNonLiteral ErrorType = "non_literal"
	ErrorTypeDuplicate  ErrorType = "duplicate"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeMalformedDeclaration = "ERR_MALFORMED_DECLARATION"
	ErrCodeUnresolvedReference  = "ERR_UNRESOLVED_REFERENCE"
	ErrCodeNonLiteralValue      = "ERR_NON_LITERAL_VALUE"
	ErrCodeDuplicateBinding     = "ERR_DUPLICATE_BINDING"
	ErrCodeDuplicateOutput      = "ERR_DUPLICATE_OUTPUT"
	ErrCodeInvalidPath          = "ERR_INVALID_PATH"
	ErrCodeFileNotFound         = "ERR_FILE_NOT_FOUND"
	ErrCodeWriteFailed          = "ERR_WRITE_FAILED"
	ErrCodeParseFailed          = "ERR_PARSE_FAILED"
	ErrCodeConfigInvalid        = "ERR_CONFIG_INVALID"
	ErrCodeInternalError        = "ERR_INTERNAL"
)

// Sentinels for errors.Is. Comparison is by type and code only.
var (
	ErrMalformedDeclaration = &SplicerError{Type: ErrorTypeMalformed, Code: ErrCodeMalformedDeclaration}
	ErrUnresolvedReference  = &SplicerError{Type: ErrorTypeUnresolved, Code: ErrCodeUnresolvedReference}
	ErrNonLiteralValue      = &SplicerError{Type: ErrorTypeNonLiteral, Code: ErrCodeNonLiteralValue}
	ErrDuplicateBinding     = &SplicerError{Type: ErrorTypeDuplicate, Code: ErrCodeDuplicateBinding}
	ErrDuplicateOutput      = &SplicerError{Type: ErrorTypeDuplicate, Code: ErrCodeDuplicateOutput}
)

// SplicerError is a structured error type with source location.
type SplicerError struct {
	Type       ErrorType
	Code       string
	Message    string
	Cause      error
	Context    map[string]interface{}
	FilePath   string
	Line       int
	Column     int
	Suggestion string
}

// Error implements the error interface.
func (e *SplicerError) Error() string {
	var parts []string

	if e.FilePath != "" || e.Line > 0 {
		location := e.FilePath
		if e.Line > 0 {
			if location != "" {
				location += ":"
			}
			location += fmt.Sprintf("%d", e.Line)
			if e.Column > 0 {
				location += fmt.Sprintf(":%d", e.Column)
			}
		}
		parts = append(parts, location+":")
	}

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Suggestion != "" {
		result += fmt.Sprintf(" (%s)", e.Suggestion)
	}

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *SplicerError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *SplicerError) Is(target error) bool {
	var t *SplicerError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *SplicerError) WithContext(key string, value interface{}) *SplicerError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds file location information.
func (e *SplicerError) WithLocation(filePath string, line, column int) *SplicerError {
	e.FilePath = filePath
	e.Line = line
	e.Column = column

	return e
}

// WithSuggestion attaches a human readable hint.
func (e *SplicerError) WithSuggestion(suggestion string) *SplicerError {
	e.Suggestion = suggestion

	return e
}

// Remap translates a block-relative position into file coordinates.
func (e *SplicerError) Remap(filePath string, mapper func(line, column int) (int, int)) *SplicerError {
	e.FilePath = filePath
	if e.Line > 0 && mapper != nil {
		e.Line, e.Column = mapper(e.Line, e.Column)
	}

	return e
}

// Error creation functions

// NewMalformedDeclarationError creates an error for a statement the block
// grammar does not recognize.
func NewMalformedDeclarationError(message string) *SplicerError {
	return &SplicerError{
		Type:    ErrorTypeMalformed,
		Code:    ErrCodeMalformedDeclaration,
		Message: message,
	}
}

// NewUnresolvedReferenceError creates an error for a concat argument that
// names no binding.
func NewUnresolvedReferenceError(name string) *SplicerError {
	return &SplicerError{
		Type:    ErrorTypeUnresolved,
		Code:    ErrCodeUnresolvedReference,
		Message: fmt.Sprintf("undefined binding %q", name),
	}
}

// NewNonLiteralValueError creates an error for a let value that is not a
// string literal.
func NewNonLiteralValueError(name, found string) *SplicerError {
	return &SplicerError{
		Type:    ErrorTypeNonLiteral,
		Code:    ErrCodeNonLiteralValue,
		Message: fmt.Sprintf("binding %q must be a string literal, found %s", name, found),
	}
}

// NewDuplicateBindingError creates an error for a name bound twice.
func NewDuplicateBindingError(name string) *SplicerError {
	return &SplicerError{
		Type:    ErrorTypeDuplicate,
		Code:    ErrCodeDuplicateBinding,
		Message: fmt.Sprintf("binding %q declared more than once", name),
	}
}

// NewDuplicateOutputError creates an error for a constant generated twice in
// one package.
func NewDuplicateOutputError(name, pkg string) *SplicerError {
	return &SplicerError{
		Type:    ErrorTypeDuplicate,
		Code:    ErrCodeDuplicateOutput,
		Message: fmt.Sprintf("constant %q spliced more than once in package %s", name, pkg),
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *SplicerError {
	return &SplicerError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string) *SplicerError {
	return &SplicerError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigInvalid,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *SplicerError {
	return &SplicerError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
	}
}

// IsExpansionError reports whether err was raised while expanding a block,
// as opposed to while reading or writing files.
func IsExpansionError(err error) bool {
	var se *SplicerError
	if errors.As(err, &se) {
		switch se.Type {
		case ErrorTypeMalformed, ErrorTypeUnresolved, ErrorTypeNonLiteral, ErrorTypeDuplicate:
			return true
		}
	}

	return false
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs an error at a level matching its category.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var se *SplicerError
	if !errors.As(err, &se) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	if IsExpansionError(se) {
		h.logger.Warn(ctx, se, "Block expansion failed",
			"type", string(se.Type),
			"code", se.Code,
			"file", se.FilePath,
			"line", se.Line)
		return
	}

	h.logger.Error(ctx, se, "Error occurred",
		"type", string(se.Type),
		"code", se.Code,
		"file", se.FilePath)
}
