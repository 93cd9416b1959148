package client

import (
	"context"

	"github.com/darmiel/vertrag/internal/api"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/service"
)

type ListAuditsOpts struct {
	Limit uint

	CorrelationID string
	NegotiationID string
	TransferID    string
	Participant   string
}

// ListAudits retrieves the latest audit entries from the server, limited to the specified number.
func (c *Client) ListAudits(ctx context.Context, opts ListAuditsOpts) ([]core.AuditEntry, error) {
	ub := c.url().setPath(api.AuditRoute)
	if opts.Limit > 0 {
		ub = ub.addQueryParam("limit", opts.Limit)
	}
	if opts.CorrelationID != "" {
		ub = ub.addQueryParam("correlation_id", opts.CorrelationID)
	}
	if opts.NegotiationID != "" {
		ub = ub.addQueryParam("negotiation_id", opts.NegotiationID)
	}
	if opts.TransferID != "" {
		ub = ub.addQueryParam("transfer_id", opts.TransferID)
	}
	if opts.Participant != "" {
		ub = ub.addQueryParam("participant", opts.Participant)
	}
	var resp []core.AuditEntry
	err := c.get(ctx, ub.build(), &resp)
	return resp, err
}

// Reset drops all negotiations and transfers on the server.
func (c *Client) Reset(ctx context.Context) (*service.ResetResult, error) {
	var res service.ResetResult
	if err := c.post(ctx, c.url().
		setPath(api.ResetRoute).
		build(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ReloadCatalog(ctx context.Context) (*service.ReloadResult, error) {
	var res service.ReloadResult
	if err := c.post(ctx, c.url().
		setPath(api.ReloadCatalogRoute).
		build(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
