package tasks

import (
	"fmt"

	"github.com/darmiel/vertrag/internal/core"
)

type TaskNotFoundError struct {
	Name string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task '%s' not found", e.Name)
}

func (e TaskNotFoundError) Unwrap() error {
	return core.ErrNotFound
}
