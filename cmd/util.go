package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/pkg/client"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

var _ pflag.Value = (*attributeFlag)(nil)

// attributeFlag collects repeated --attr key=value flags.
type attributeFlag struct {
	attrs core.AttributeSet
}

func (a *attributeFlag) String() string {
	parts := make([]string, 0, len(a.attrs))
	for _, key := range a.attrs.Keys() {
		parts = append(parts, key+"="+a.attrs[key].String())
	}
	return strings.Join(parts, " ")
}

func (a *attributeFlag) Set(s string) error {
	key, value, err := core.ParseAttribute(s)
	if err != nil {
		return err
	}
	if a.attrs == nil {
		a.attrs = core.AttributeSet{}
	}
	a.attrs[key] = value
	return nil
}

func (a *attributeFlag) Type() string {
	return "key=value"
}

// logError logs err including the server's correlation id if there is one.
func logError(err error, msg string) error {
	var apiErr client.APIError
	if errors.As(err, &apiErr) {
		log.Error().
			Str("code", apiErr.Code).
			Str("correlation_id", apiErr.CorrelationID).
			Msg(msg)
		return err
	}
	log.Error().Err(err).Msg(msg)
	return err
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stateColor(state string) string {
	switch state {
	case "FINALIZED", "COMPLETED":
		return green(state)
	case "TERMINATED":
		return red(state)
	default:
		return yellow(state)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func fmtAttributes(attrs core.AttributeSet) string {
	if len(attrs) == 0 {
		return faint("(none)")
	}
	parts := make([]string, 0, len(attrs))
	for _, key := range attrs.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%s", key, attrs[key]))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
