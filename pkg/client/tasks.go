package client

import (
	"context"

	"github.com/darmiel/vertrag/internal/api"
	"github.com/darmiel/vertrag/internal/tasks"
)

// ListTasks returns the background tasks of the provider.
func (c *Client) ListTasks(ctx context.Context) ([]tasks.TaskStatus, error) {
	var resp []tasks.TaskStatus
	err := c.get(ctx, c.url().setPath(api.TasksRoute).build(), &resp)
	return resp, err
}

// TriggerTask starts a run of the named task. It does not wait for the run to finish.
func (c *Client) TriggerTask(ctx context.Context, name string) error {
	var resp api.TriggerTaskResponse
	return c.post(ctx, c.url().
		setPath(api.TaskTriggerRoute).
		setPathParam("name", name).
		build(), nil, &resp)
}

func (c *Client) TaskLogs(ctx context.Context, name string) ([]tasks.LogEntry, error) {
	var resp []tasks.LogEntry
	err := c.get(ctx, c.url().
		setPath(api.TaskLogsRoute).
		setPathParam("name", name).
		build(), &resp)
	return resp, err
}
