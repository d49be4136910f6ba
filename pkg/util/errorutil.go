package util

import (
	"errors"
	"fmt"
)

// Error codes carried by DomainError.
const (
	CodeConflict       = "CONFLICT"
	CodeCorruptStorage = "STORAGE_CORRUPT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInternal       = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, Details: details}
}

// NewConflict signals that a write would violate a uniqueness rule.
func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, details)
}

// NewCorruptStorage signals that a stored value cannot be trusted: it is
// either not valid JSON or fails schema validation on read.
func NewCorruptStorage(key, message string, err error) error {
	return &DomainError{
		Code:    CodeCorruptStorage,
		Message: message,
		Details: map[string]any{"key": key},
		Err:     err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool {
	return HasCode(err, CodeConflict)
}

// IsCorruptStorage reports whether err marks an untrusted stored value.
func IsCorruptStorage(err error) bool {
	return HasCode(err, CodeCorruptStorage)
}
