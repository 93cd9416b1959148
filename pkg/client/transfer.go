package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/darmiel/vertrag/internal/api"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/service"
)

func (c *Client) CreateTransfer(ctx context.Context, req service.CreateTransferRequest) (*core.Transfer, error) {
	var t core.Transfer
	if err := c.post(ctx, c.url().
		setPath(api.TransfersRoute).
		build(), req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) AdvanceTransfer(
	ctx context.Context,
	id string,
	action core.TransferAction,
	reason string,
) (*core.Transfer, error) {
	var t core.Transfer
	if err := c.post(ctx, c.url().
		setPath(api.TransferActionRoute).
		setPathParam("id", id).
		setPathParam("action", action.String()).
		build(), api.ActionPayload{Reason: reason}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// FetchData downloads the payload of a completed transfer.
func (c *Client) FetchData(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url().
		setPath(api.TransferDataRoute).
		setPathParam("id", id).
		build(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading transfer data: %w", err)
	}
	return data, nil
}

func (c *Client) GetTransfer(ctx context.Context, id string) (*core.Transfer, error) {
	var t core.Transfer
	if err := c.get(ctx, c.url().
		setPath(api.TransferRoute).
		setPathParam("id", id).
		build(), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTransfers lists the provider's transfers, optionally only those citing agreementID.
func (c *Client) ListTransfers(ctx context.Context, agreementID string) ([]*core.Transfer, error) {
	ub := c.url().setPath(api.TransfersRoute)
	if agreementID != "" {
		ub = ub.addQueryParam("agreement_id", agreementID)
	}
	var list []*core.Transfer
	err := c.get(ctx, ub.build(), &list)
	return list, err
}
