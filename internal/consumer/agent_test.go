package consumer

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/vertrag/internal/api"
	"github.com/darmiel/vertrag/internal/catalog"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/service"
	"github.com/darmiel/vertrag/internal/store"
	"github.com/darmiel/vertrag/pkg/client"
)

func newProvider(t *testing.T) *service.Service {
	t.Helper()
	manager, err := catalog.NewManager(catalog.LoadDefault)
	require.NoError(t, err)
	return service.New("provider-automotors-oem", manager, store.NewInMemoryRegistry(), nil, nil)
}

func TestAgent_InProcess(t *testing.T) {
	provider := newProvider(t)
	testAgentHappyPath(t, provider, provider)
}

func TestAgent_OverHTTP(t *testing.T) {
	provider := newProvider(t)
	srv := httptest.NewServer(api.NewServer(provider, nil).Routes())
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, client.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	testAgentHappyPath(t, c, provider)
}

func testAgentHappyPath(t *testing.T, p Provider, provider *service.Service) {
	ctx := context.Background()
	agent := New(p, DefaultIdentity(), nil)

	for _, assetID := range []string{"part-catalog-2024", "quality-metrics-q4", "traceability-batch-001"} {
		n, err := agent.Negotiate(ctx, assetID)
		require.NoError(t, err, assetID)
		require.Equal(t, core.NegotiationFinalized, n.State, assetID)

		tr, err := agent.Transfer(ctx, n.Agreement.ID)
		require.NoError(t, err, assetID)
		assert.Equal(t, core.TransferCompleted, tr.State)

		data, err := agent.ReceivedData(ctx, tr.ID)
		require.NoError(t, err)

		// the provider has served exactly the same bytes
		served, err := provider.FetchData(ctx, tr.ID)
		require.NoError(t, err)
		assert.Equal(t, served, data)
	}

	// both sides agree on the state of every negotiation
	local, err := agent.Negotiations(ctx)
	require.NoError(t, err)
	require.Len(t, local, 3)
	for _, n := range local {
		remote, err := provider.GetNegotiation(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, remote.State, n.State)
		assert.Equal(t, remote.Agreement.ID, n.Agreement.ID)
	}

	agreements, err := agent.Agreements(ctx)
	require.NoError(t, err)
	assert.Len(t, agreements, 3)

	transfers, err := agent.Transfers(ctx)
	require.NoError(t, err)
	assert.Len(t, transfers, 3)
}

func TestAgent_Denied(t *testing.T) {
	ctx := context.Background()
	provider := newProvider(t)
	agent := New(provider, DefaultIdentity(), nil)

	require.NoError(t, agent.SetAttributes(core.AttributeSet{
		"partner_type": core.StringValue("unauthorized"),
	}))

	n, err := agent.Negotiate(ctx, "part-catalog-2024")
	require.NoError(t, err)
	assert.Equal(t, core.NegotiationTerminated, n.State)
	assert.Equal(t, core.ReasonNoPermission, n.TerminationReason)
	require.NotNil(t, n.Decision)
	assert.False(t, n.Decision.Allowed)

	local, err := agent.Negotiations(ctx)
	require.NoError(t, err)
	require.Len(t, local, 1)
	assert.Equal(t, core.NegotiationTerminated, local[0].State)

	agreements, err := agent.Agreements(ctx)
	require.NoError(t, err)
	assert.Empty(t, agreements)
}

func TestAgent_TransferNeedsOwnAgreement(t *testing.T) {
	ctx := context.Background()
	provider := newProvider(t)

	other := New(provider, DefaultIdentity(), nil)
	n, err := other.Negotiate(ctx, "part-catalog-2024")
	require.NoError(t, err)

	agent := New(provider, DefaultIdentity(), nil)
	_, err = agent.Transfer(ctx, n.Agreement.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAgent_ReceivedDataBeforeTransfer(t *testing.T) {
	agent := New(newProvider(t), DefaultIdentity(), nil)
	_, err := agent.ReceivedData(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAgent_SetAttributes(t *testing.T) {
	agent := New(newProvider(t), DefaultIdentity(), nil)

	err := agent.SetAttributes(core.AttributeSet{"": core.StringValue("x")})
	assert.ErrorIs(t, err, core.ErrBadRequest)

	attrs := core.AttributeSet{"region": core.StringValue("EU")}
	require.NoError(t, agent.SetAttributes(attrs))
	attrs["region"] = core.StringValue("US")

	identity := agent.Identity()
	assert.Equal(t, DefaultConsumerID, identity.ID)
	region, ok := identity.Attributes.Get("region")
	require.True(t, ok)
	assert.Equal(t, "EU", region.String())
}
