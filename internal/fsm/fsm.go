// Package fsm applies the negotiation and transfer transition tables to entities.
//
// The machines only mutate the entity they are given and never touch a registry;
// callers are expected to run them inside a registry update so a failed action
// leaves the stored state untouched.
package fsm

import (
	"time"

	"github.com/google/uuid"
)

const DefaultTerminationReason = "terminated by request"

type options struct {
	now   func() time.Time
	newID func() string
}

type Option func(*options)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator overrides how entity and agreement ids are generated.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
