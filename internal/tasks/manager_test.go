package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/vertrag/internal/core"
)

func TestManager_TriggerAndLogs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(ctx)
	done := make(chan struct{})
	m.Register("reload", 0, func(ctx context.Context, logger zerolog.Logger) error {
		logger.Info().Msg("reloaded 3 assets")
		close(done)
		return nil
	})

	require.NoError(t, m.Trigger("reload"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not run")
	}
	m.Wait()

	status := m.ListStatus()
	require.Len(t, status, 1)
	assert.Equal(t, "reload", status[0].Name)
	assert.Equal(t, 1, status[0].Runs)
	assert.Equal(t, "success", status[0].LastResult)
	assert.False(t, status[0].Running)
	assert.True(t, status[0].NextRun.IsZero())

	logs, err := m.GetLogs("reload")
	require.NoError(t, err)
	var messages []string
	for _, l := range logs {
		messages = append(messages, l.Message)
	}
	assert.Contains(t, messages, "reloaded 3 assets")
}

func TestManager_FailedRun(t *testing.T) {
	m := NewManager(context.Background())
	task := m.Register("broken", 0, func(ctx context.Context, logger zerolog.Logger) error {
		return errors.New("catalog file missing")
	})

	err := task.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "failed: catalog file missing", task.Status().LastResult)

	logs := task.Logs()
	require.NotEmpty(t, logs)
	assert.Equal(t, "error", logs[len(logs)-1].Level)
}

func TestManager_UnknownTask(t *testing.T) {
	m := NewManager(context.Background())

	err := m.Trigger("nope")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = m.GetLogs("nope")
	assert.ErrorAs(t, err, &TaskNotFoundError{})
}

func TestManager_ScheduledStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	m := NewManager(ctx)
	ran := make(chan struct{}, 10)
	m.Register("tick", 10*time.Millisecond, func(ctx context.Context, logger zerolog.Logger) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task was not run")
	}

	status := m.ListStatus()
	require.Len(t, status, 1)
	assert.Equal(t, "10ms", status[0].Interval)

	cancel()
	m.Wait()
}
