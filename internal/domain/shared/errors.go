package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError into one of the failure families the
// engine surfaces to callers.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindStorage    ErrorKind = "storage"
	KindState      ErrorKind = "state"
)

// FieldError describes a single failed check inside a larger request, such as
// one item of an adjustment batch.
type FieldError struct {
	ItemIndex int    `json:"item_index"`
	Field     string `json:"field"`
	Message   string `json:"message"`
}

// DomainError represents a domain-level error
type DomainError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Kind    ErrorKind    `json:"-"`
	Details []FieldError `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches two domain errors by code, so wrapped copies carrying details or a
// cause still satisfy errors.Is against the package sentinels.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of the error carrying per-field details.
func (e *DomainError) WithDetails(details []FieldError) *DomainError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy of the error with a more specific message.
func (e *DomainError) WithMessage(message string) *DomainError {
	cp := *e
	cp.Message = message
	return &cp
}

// Wrap returns a copy of the error with the given cause attached.
func (e *DomainError) Wrap(cause error) *DomainError {
	cp := *e
	cp.cause = cause
	return &cp
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    KindValidation,
	}
}

func newKindError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// NewValidationError creates an error for bad caller input. Nothing is committed.
func NewValidationError(code, message string) *DomainError {
	return newKindError(KindValidation, code, message)
}

// NewNotFoundError creates an error for a missing master data record.
func NewNotFoundError(code, message string) *DomainError {
	return newKindError(KindNotFound, code, message)
}

// NewStateError creates an error for an operation not allowed in the current state.
func NewStateError(code, message string) *DomainError {
	return newKindError(KindState, code, message)
}

// NewConflictError creates an error for a duplicate or conflicting write.
func NewConflictError(code, message string) *DomainError {
	return newKindError(KindConflict, code, message)
}

// NewStorageError wraps a persistence failure.
func NewStorageError(message string, cause error) *DomainError {
	return ErrStorage.WithMessage(message).Wrap(cause)
}

// Common domain errors
var (
	ErrNotFound            = newKindError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = newKindError(KindConflict, "ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = newKindError(KindValidation, "INVALID_INPUT", "Invalid input provided")
	ErrValidation          = newKindError(KindValidation, "VALIDATION_ERROR", "Validation failed")
	ErrConcurrencyConflict = newKindError(KindConflict, "CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = newKindError(KindState, "INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = newKindError(KindValidation, "INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInvalidUnit         = newKindError(KindValidation, "INVALID_UNIT", "Unit is unknown or has a non-positive multiplier")
	ErrStorage             = newKindError(KindStorage, "STORAGE_ERROR", "Storage operation failed")
)

// KindOf returns the kind of the first DomainError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindValidation
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNotFound
}

// IsConcurrencyConflict reports whether err is a lost-update conflict that the
// caller may retry.
func IsConcurrencyConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
