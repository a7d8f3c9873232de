package entity

import (
	"fmt"
	"time"
)

// Business-rule failures are returned as typed errors so callers can react
// without parsing message strings. Anything else that escapes the services
// is treated as an infrastructure fault.

// ValidationError is a missing/malformed input. Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PreconditionError means the requested transition is not legal in the
// current state, or the actor lacks authority for it. CurrentStatus carries
// the request's general status so the caller does not need to re-poll.
type PreconditionError struct {
	Message       string
	CurrentStatus string
}

func (e *PreconditionError) Error() string {
	if e.CurrentStatus != "" {
		return fmt.Sprintf("%s (current status: %s)", e.Message, e.CurrentStatus)
	}
	return e.Message
}

func NewPreconditionError(message, currentStatus string) *PreconditionError {
	return &PreconditionError{Message: message, CurrentStatus: currentStatus}
}

// NotFoundError covers unknown ids/codes and expired or redeemed tokens.
// Expired and unknown are deliberately indistinguishable.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ConflictError is a lost race on a conditional update: the guarded write
// matched zero rows because a concurrent writer got there first.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// RateLimitError reports current usage against the limit and when the
// caller may try again.
type RateLimitError struct {
	Usage      int
	Limit      int
	RetryAfter time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("request limit reached (%d/%d), retry after %s",
		e.Usage, e.Limit, e.RetryAfter.Format(time.RFC3339))
}
