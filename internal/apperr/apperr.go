// Package apperr classifies failures into the kinds the UI reacts to:
// validation problems are fixed by the user, not-found is fixed by entering a
// different id, service failures can be retried and persistence failures are
// only logged.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	KindService Kind = iota
	KindValidation
	KindNotFound
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindService:
		return "service"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	// Fields lists the offending input fields of a validation error.
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same call may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindService
}

func Validation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: err}
}

func Service(message string, err error) *Error {
	return &Error{Kind: KindService, Message: message, Err: err}
}

func Persistence(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

// KindOf classifies err. Errors that carry no kind are service failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindService
}

// As returns err as *Error, wrapping unclassified errors as service errors.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Service("service unavailable", err)
}
