package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced asset, negotiation, agreement or transfer does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when an action is not permitted from the entity's current state.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidPolicy is returned when a policy uses an unknown operator or an operand of the wrong shape.
	ErrInvalidPolicy = errors.New("invalid policy")

	// ErrUnauthorized is returned when a transfer references an agreement that does not cover it.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidState is returned when data is fetched from a transfer that has not completed.
	ErrInvalidState = errors.New("invalid state")

	// ErrBadRequest is returned for malformed requests, e.g. a missing asset id.
	ErrBadRequest = errors.New("bad request")
)

// NotFoundError names the kind and id of the missing entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// TransitionError describes a rejected state machine action.
type TransitionError struct {
	Entity string
	ID     string
	State  string
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s '%s': action '%s' not allowed in state %s", e.Entity, e.ID, e.Action, e.State)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Error codes used across the HTTP boundary.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInvalidPolicy     = "INVALID_POLICY"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInvalidState      = "INVALID_STATE"
	CodeBadRequest        = "BAD_REQUEST"
	CodeInternal          = "INTERNAL"
)

var codeSentinels = []struct {
	code string
	err  error
}{
	{CodeNotFound, ErrNotFound},
	{CodeInvalidTransition, ErrInvalidTransition},
	{CodeInvalidPolicy, ErrInvalidPolicy},
	{CodeUnauthorized, ErrUnauthorized},
	{CodeInvalidState, ErrInvalidState},
	{CodeBadRequest, ErrBadRequest},
}

// ErrorCode classifies err into one of the error codes; unknown errors are CodeInternal.
func ErrorCode(err error) string {
	for _, cs := range codeSentinels {
		if errors.Is(err, cs.err) {
			return cs.code
		}
	}
	return CodeInternal
}

// SentinelForCode returns the sentinel error for a code, or nil for codes without one.
func SentinelForCode(code string) error {
	for _, cs := range codeSentinels {
		if cs.code == code {
			return cs.err
		}
	}
	return nil
}
