package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/vertrag/internal/core"
)

func negotiation(id string) *core.Negotiation {
	return &core.Negotiation{
		ID:        id,
		AssetID:   "part-catalog-2024",
		State:     core.NegotiationRequested,
		CreatedAt: time.Now(),
	}
}

// finalized stores a finalized negotiation id with agreement agreementID.
func finalized(t *testing.T, r *InMemoryRegistry, id, agreementID string) {
	t.Helper()
	n := negotiation(id)
	n.State = core.NegotiationFinalized
	n.Agreement = &core.Agreement{ID: agreementID, NegotiationID: id, AssetID: n.AssetID}
	require.NoError(t, r.PutNegotiation(context.Background(), n))
}

func TestInMemoryRegistry_NegotiationLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRegistry()

	_, err := r.GetNegotiation(ctx, "n1")
	require.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, r.PutNegotiation(ctx, negotiation("n1")))

	updated, err := r.UpdateNegotiation(ctx, "n1", func(n *core.Negotiation) error {
		n.State = core.NegotiationFinalized
		n.Agreement = &core.Agreement{ID: "a1", NegotiationID: n.ID, AssetID: n.AssetID}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, core.NegotiationFinalized, updated.State)

	found, err := r.FindAgreement(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "n1", found.ID)

	_, err = r.FindAgreement(ctx, "a2")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestInMemoryRegistry_FailedUpdateIsDiscarded(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRegistry()
	require.NoError(t, r.PutNegotiation(ctx, negotiation("n1")))

	boom := errors.New("boom")
	_, err := r.UpdateNegotiation(ctx, "n1", func(n *core.Negotiation) error {
		n.State = core.NegotiationOffered
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := r.GetNegotiation(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, core.NegotiationRequested, got.State)
}

func TestInMemoryRegistry_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRegistry()
	n := negotiation("n1")
	require.NoError(t, r.PutNegotiation(ctx, n))

	n.State = core.NegotiationTerminated
	got, err := r.GetNegotiation(ctx, "n1")
	require.NoError(t, err)
	got.State = core.NegotiationAgreed

	again, err := r.GetNegotiation(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, core.NegotiationRequested, again.State)
}

func TestInMemoryRegistry_SerializesUpdatesPerID(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRegistry()
	require.NoError(t, r.PutNegotiation(ctx, negotiation("n1")))
	require.NoError(t, r.PutNegotiation(ctx, negotiation("n2")))

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		for _, id := range []string{"n1", "n2"} {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := r.UpdateNegotiation(ctx, id, func(n *core.Negotiation) error {
					n.History = append(n.History, core.StateChange{To: "x"})
					return nil
				})
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	for _, id := range []string{"n1", "n2"} {
		got, err := r.GetNegotiation(ctx, id)
		require.NoError(t, err)
		assert.Len(t, got.History, workers, "lost updates on %s", id)
	}
}

func TestInMemoryRegistry_Reset(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRegistry()
	for i := 0; i < 2; i++ {
		require.NoError(t, r.PutNegotiation(ctx, negotiation(fmt.Sprintf("n%d", i))))
	}
	finalized(t, r, "n2", "a1")
	require.NoError(t, r.PutTransfer(ctx, &core.Transfer{ID: "t1", AgreementID: "a1", State: core.TransferRequested}))

	negotiations, transfers, err := r.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, negotiations)
	assert.Equal(t, 1, transfers)

	list, err := r.ListNegotiations(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = r.GetTransfer(ctx, "t1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestInMemoryRegistry_UpdateRacingResetIsDiscarded(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRegistry()
	finalized(t, r, "n1", "a1")
	require.NoError(t, r.PutTransfer(ctx, &core.Transfer{ID: "t1", AgreementID: "a1", State: core.TransferRequested}))

	_, err := r.UpdateTransfer(ctx, "t1", func(tr *core.Transfer) error {
		// reset lands while the update is in progress
		_, _, err := r.Reset(ctx)
		require.NoError(t, err)
		tr.State = core.TransferStarted
		return nil
	})
	require.ErrorIs(t, err, core.ErrNotFound)

	list, err := r.ListTransfers(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInMemoryRegistry_PutTransferRequiresFinalizedAgreement(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRegistry()
	require.NoError(t, r.PutNegotiation(ctx, negotiation("n1")))
	finalized(t, r, "n2", "a2")

	tests := []struct {
		name        string
		agreementID string
		wantErr     bool
	}{
		{"finalized agreement", "a2", false},
		{"unknown agreement", "a1", true},
		{"empty agreement", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.PutTransfer(ctx, &core.Transfer{ID: "t-" + tt.agreementID, AgreementID: tt.agreementID})
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrNotFound)
				return
			}
			assert.NoError(t, err)
		})
	}

	// agreement dropped by a reset between lookup and store
	_, err := r.FindAgreement(ctx, "a2")
	require.NoError(t, err)
	_, _, err = r.Reset(ctx)
	require.NoError(t, err)

	err = r.PutTransfer(ctx, &core.Transfer{ID: "t-late", AgreementID: "a2"})
	require.ErrorIs(t, err, core.ErrNotFound)
	list, err := r.ListTransfers(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInMemoryRegistry_ListIsOrdered(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRegistry()
	base := time.Now()
	for i, id := range []string{"c", "a", "b"} {
		n := negotiation(id)
		n.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, r.PutNegotiation(ctx, n))
	}

	list, err := r.ListNegotiations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestKeyedMutex_ReleasesKeys(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("a")
	unlock()
	assert.Empty(t, k.locks)
}
