package errors

import (
	"fmt"

	"github.com/hansithacreations/storefront-api/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrDataIntegrity is returned when a verified webhook event is missing a
// required correlation field. Distinct from ErrNotFound: the sender delivered
// a structurally broken payload, not a reference to a missing resource.
type ErrDataIntegrity struct {
	Field   string
	Message string
}

func (e *ErrDataIntegrity) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("data integrity fault on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("data integrity fault: missing %s", e.Field)
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrInvalidStateTransition is returned when an invalid state transition is attempted
type ErrInvalidStateTransition struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrUpstream wraps a non-success response from the courier aggregator.
// Body carries the aggregator's raw error payload for operator logs.
type ErrUpstream struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("courier aggregator %s failed: status %d: %s", e.Op, e.StatusCode, e.Body)
}
