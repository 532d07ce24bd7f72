package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a SplicerError if the
// input is not already one.
func Wrap(err error, errType ErrorType, code, message string) *SplicerError {
	if err == nil {
		return nil
	}

	// Keep the location of an inner SplicerError so diagnostics still point
	// at the source.
	var se *SplicerError
	if errors.As(err, &se) {
		return &SplicerError{
			Type:       errType,
			Code:       code,
			Message:    message,
			Cause:      se,
			Context:    se.Context,
			FilePath:   se.FilePath,
			Line:       se.Line,
			Column:     se.Column,
			Suggestion: se.Suggestion,
		}
	}

	return &SplicerError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps a filesystem error with the path it concerns.
func WrapIO(err error, code, path string) *SplicerError {
	se := Wrap(err, ErrorTypeIO, code, "i/o failure")
	if se != nil {
		se.FilePath = path
		se.Line = 0
		se.Column = 0
	}

	return se
}

// GetErrorType returns the type of a SplicerError, or "" for other errors.
func GetErrorType(err error) ErrorType {
	var se *SplicerError
	if errors.As(err, &se) {
		return se.Type
	}

	return ""
}

// GetErrorCode returns the code of a SplicerError, or "" for other errors.
func GetErrorCode(err error) string {
	var se *SplicerError
	if errors.As(err, &se) {
		return se.Code
	}

	return ""
}
