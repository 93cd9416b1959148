package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/vertrag/internal/api"
	"github.com/darmiel/vertrag/internal/api/middleware"
	"github.com/darmiel/vertrag/internal/audit"
	"github.com/darmiel/vertrag/internal/catalog"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/service"
	"github.com/darmiel/vertrag/internal/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	manager, err := catalog.NewManager(catalog.LoadDefault)
	require.NoError(t, err)
	svc := service.New("provider-automotors-oem", manager, store.NewInMemoryRegistry(), audit.NewInMemoryAuditor(0), nil)

	srv := httptest.NewServer(api.NewServer(svc, nil).Routes())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("localhost")
	assert.Error(t, err)
}

func TestURLBuilder(t *testing.T) {
	c, err := New("http://localhost:8080/")
	require.NoError(t, err)

	got := c.url().
		setPath(api.TransferActionRoute).
		setPathParam("id", "a b").
		setPathParam("action", "start").
		addQueryParam("limit", 5).
		build()
	assert.Equal(t, "http://localhost:8080/v1/transfers/a%20b/start?limit=5", got)
}

func TestClient_RoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	info, err := c.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "provider-automotors-oem", info.Participant)

	assets, err := c.ListAssets(ctx)
	require.NoError(t, err)
	assert.Len(t, assets, 3)

	n, err := c.CreateNegotiation(ctx, service.CreateNegotiationRequest{
		ConsumerID: "consumer-tierone-supplier",
		AssetID:    "traceability-batch-001",
		Attributes: core.AttributeSet{"certification": core.ListValue("ISO27001")},
	})
	require.NoError(t, err)

	var res *service.NegotiationResult
	for _, action := range []core.NegotiationAction{
		core.ActionRequestOffer, core.ActionAgree, core.ActionVerify, core.ActionFinalize,
	} {
		res, err = c.AdvanceNegotiation(ctx, n.ID, action, "")
		require.NoError(t, err, "action %s", action)
	}
	require.NotNil(t, res.Negotiation.Agreement)
	assert.Equal(t, core.NegotiationFinalized, res.Negotiation.State)
	assert.True(t, core.ListValue("ISO27001").Equal(res.Negotiation.Attributes["certification"]))

	tr, err := c.CreateTransfer(ctx, service.CreateTransferRequest{AgreementID: res.Negotiation.Agreement.ID})
	require.NoError(t, err)
	_, err = c.AdvanceTransfer(ctx, tr.ID, core.ActionStart, "")
	require.NoError(t, err)

	_, err = c.FetchData(ctx, tr.ID)
	assert.ErrorIs(t, err, core.ErrInvalidState)

	tr, err = c.AdvanceTransfer(ctx, tr.ID, core.ActionComplete, "")
	require.NoError(t, err)
	assert.NotEmpty(t, tr.PayloadDigest)

	data, err := c.FetchData(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, audit.Digest(data), tr.PayloadDigest)

	transfers, err := c.ListTransfers(ctx, res.Negotiation.Agreement.ID)
	require.NoError(t, err)
	assert.Len(t, transfers, 1)
}

func TestClient_ErrorsUnwrapToSentinels(t *testing.T) {
	c := newTestClient(t)
	ctx := middleware.WithCorrelationID(context.Background(), "client-test")

	_, err := c.GetNegotiation(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	var apiErr APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, core.CodeNotFound, apiErr.Code)
	assert.Equal(t, "client-test", apiErr.CorrelationID)

	n, err := c.CreateNegotiation(ctx, service.CreateNegotiationRequest{
		ConsumerID: "consumer-tierone-supplier",
		AssetID:    "part-catalog-2024",
	})
	require.NoError(t, err)
	_, err = c.AdvanceNegotiation(ctx, n.ID, core.ActionVerify, "")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	_, err = c.CreateTransfer(ctx, service.CreateTransferRequest{AgreementID: "nope"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	entries, err := c.ListAudits(ctx, ListAuditsOpts{CorrelationID: "client-test"})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestClient_Terminate(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	n, err := c.CreateNegotiation(ctx, service.CreateNegotiationRequest{
		ConsumerID: "consumer-tierone-supplier",
		AssetID:    "part-catalog-2024",
	})
	require.NoError(t, err)

	res, err := c.AdvanceNegotiation(ctx, n.ID, core.ActionTerminate, "no longer needed")
	require.NoError(t, err)
	assert.Equal(t, core.NegotiationTerminated, res.Negotiation.State)
	assert.Equal(t, "no longer needed", res.Negotiation.TerminationReason)

	reset, err := c.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reset.Negotiations)
}
