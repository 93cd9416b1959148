package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TaskFunc is the unit of work.
// Everything written to logger is also kept with the task and can be retrieved at runtime.
type TaskFunc func(ctx context.Context, logger zerolog.Logger) error

type TaskStatus struct {
	Name       string    `json:"name,omitempty"`
	Interval   string    `json:"interval,omitempty"`
	Running    bool      `json:"running,omitempty"`
	Runs       int       `json:"runs"`
	LastRun    time.Time `json:"last_run"`
	LastResult string    `json:"last_result,omitempty"`
	NextRun    time.Time `json:"next_run"`
}

type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level,omitempty"`
	Message string    `json:"message,omitempty"`
}
