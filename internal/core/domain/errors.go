package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the catalog has no match for a query.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable marks catalog failures after retries.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrInsufficientData means sampling produced nothing to aggregate.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrValidation marks rejected caller input.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence marks snapshot store failures.
	ErrPersistence = errors.New("persistence failed")
)

// UpstreamError describes a failed catalog call.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": " + ErrUpstreamUnavailable.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// InsufficientInputError is returned when fewer entities than required are supplied.
type InsufficientInputError struct {
	Got int
	Min int
}

func (e InsufficientInputError) Error() string {
	return fmt.Sprintf("need at least %d entities to compare, got %d", e.Min, e.Got)
}

func (e InsufficientInputError) Is(target error) bool {
	return target == ErrValidation
}

// TooManyInputsError is returned when more entities than allowed are supplied.
type TooManyInputsError struct {
	Got int
	Max int
}

func (e TooManyInputsError) Error() string {
	return fmt.Sprintf("at most %d entities can be compared, got %d", e.Max, e.Got)
}

func (e TooManyInputsError) Is(target error) bool {
	return target == ErrValidation
}

// InvalidInputError reports a malformed argument such as an empty name.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e InvalidInputError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError wraps a snapshot store failure for one entity.
type PersistenceError struct {
	Entity string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Entity, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// EntityError is the per-entity failure record embedded in batch results.
type EntityError struct {
	Entity string `json:"entity"`
	Error  string `json:"error"`
	Note   string `json:"note,omitempty"`
}
