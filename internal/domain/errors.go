package domain

import "fmt"

// Validation reasons surfaced by the admin services
const (
	ReasonIncomplete         = "incomplete"
	ReasonDiscountOutOfRange = "discount_out_of_range"
	ReasonStartAfterEnd      = "start_after_end"
	ReasonAlreadyExpired     = "already_expired"
	ReasonInvalidPrice       = "invalid_price"
	ReasonInvalidStock       = "invalid_stock"
)

// ValidationError reports malformed or out-of-range input, the caller's fault
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NewValidationError creates a ValidationError with the given reason
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// NotFoundError reports that a referenced entity does not exist
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// NewNotFoundError creates a NotFoundError for the given resource
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ConflictError reports a write that lost a race with a concurrent change
type ConflictError struct {
	Resource string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting concurrent change on %s", e.Resource)
}

// NewConflictError creates a ConflictError for the given resource
func NewConflictError(resource string) *ConflictError {
	return &ConflictError{Resource: resource}
}
