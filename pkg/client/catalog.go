package client

import (
	"context"

	"github.com/darmiel/vertrag/internal/api"
	"github.com/darmiel/vertrag/internal/buildinfo"
	"github.com/darmiel/vertrag/internal/service"
)

func (c *Client) Info(ctx context.Context) (*buildinfo.Info, error) {
	var info buildinfo.Info
	if err := c.get(ctx, c.url().
		setPath(api.AboutRoute).
		build(), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) ListAssets(ctx context.Context) ([]service.CatalogEntry, error) {
	var entries []service.CatalogEntry
	err := c.get(ctx, c.url().
		setPath(api.CatalogRoute).
		build(), &entries)
	return entries, err
}

func (c *Client) GetAsset(ctx context.Context, assetID string) (*service.CatalogEntry, error) {
	var entry service.CatalogEntry
	if err := c.get(ctx, c.url().
		setPath(api.AssetRoute).
		setPathParam("assetID", assetID).
		build(), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) PreviewAsset(ctx context.Context, assetID string) (map[string]any, error) {
	var preview map[string]any
	err := c.get(ctx, c.url().
		setPath(api.AssetPreviewRoute).
		setPathParam("assetID", assetID).
		build(), &preview)
	return preview, err
}

// Explain evaluates a policy on the server without starting a negotiation.
func (c *Client) Explain(ctx context.Context, req service.ExplainRequest) (*service.ExplainResponse, error) {
	var res service.ExplainResponse
	if err := c.post(ctx, c.url().
		setPath(api.ExplainRoute).
		build(), req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
