package client

import (
	"context"

	"github.com/darmiel/vertrag/internal/api"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/service"
)

// CreateNegotiation asks the provider to open a negotiation for an asset.
func (c *Client) CreateNegotiation(ctx context.Context, req service.CreateNegotiationRequest) (*core.Negotiation, error) {
	var n core.Negotiation
	if err := c.post(ctx, c.url().
		setPath(api.NegotiationsRoute).
		build(), req, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// AdvanceNegotiation applies an action to a negotiation on the provider.
// reason is only used by terminate and may be empty.
func (c *Client) AdvanceNegotiation(
	ctx context.Context,
	id string,
	action core.NegotiationAction,
	reason string,
) (*service.NegotiationResult, error) {
	var res service.NegotiationResult
	if err := c.post(ctx, c.url().
		setPath(api.NegotiationActionRoute).
		setPathParam("id", id).
		setPathParam("action", action.String()).
		build(), api.ActionPayload{Reason: reason}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetNegotiation(ctx context.Context, id string) (*core.Negotiation, error) {
	var n core.Negotiation
	if err := c.get(ctx, c.url().
		setPath(api.NegotiationRoute).
		setPathParam("id", id).
		build(), &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNegotiations lists the provider's negotiations, optionally only those of consumerID.
func (c *Client) ListNegotiations(ctx context.Context, consumerID string) ([]*core.Negotiation, error) {
	ub := c.url().setPath(api.NegotiationsRoute)
	if consumerID != "" {
		ub = ub.addQueryParam("consumer_id", consumerID)
	}
	var list []*core.Negotiation
	err := c.get(ctx, ub.build(), &list)
	return list, err
}

func (c *Client) ListAgreements(ctx context.Context) ([]core.Agreement, error) {
	var list []core.Agreement
	err := c.get(ctx, c.url().
		setPath(api.AgreementsRoute).
		build(), &list)
	return list, err
}

func (c *Client) GetAgreement(ctx context.Context, id string) (*core.Agreement, error) {
	var agreement core.Agreement
	if err := c.get(ctx, c.url().
		setPath(api.AgreementRoute).
		setPathParam("id", id).
		build(), &agreement); err != nil {
		return nil, err
	}
	return &agreement, nil
}
