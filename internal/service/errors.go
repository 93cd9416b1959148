package service

import (
	"fmt"

	"github.com/darmiel/vertrag/internal/core"
)

// badRequest reports a malformed request. The HTTP layer maps it to 400.
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", core.ErrBadRequest, fmt.Sprintf(format, args...))
}
