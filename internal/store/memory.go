package store

import (
	"context"
	"sort"
	"sync"

	"github.com/darmiel/vertrag/internal/core"
)

var _ core.Registry = (*InMemoryRegistry)(nil)

// InMemoryRegistry owns the negotiations and transfers of one participant.
//
// Entities are stored and handed out as copies. Updates to the same id are serialized,
// updates to different ids run in parallel. Reset swaps both collections in one step;
// an update that was in flight during a reset is discarded and reports ErrNotFound.
type InMemoryRegistry struct {
	mu           sync.RWMutex
	generation   uint64
	negotiations map[string]*core.Negotiation
	transfers    map[string]*core.Transfer

	// agreements maps agreement ids to the negotiation that produced them
	agreements map[string]string

	locks *keyedMutex
}

func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		negotiations: make(map[string]*core.Negotiation),
		transfers:    make(map[string]*core.Transfer),
		agreements:   make(map[string]string),
		locks:        newKeyedMutex(),
	}
}

func negotiationKey(id string) string {
	return "negotiation/" + id
}

func transferKey(id string) string {
	return "transfer/" + id
}

func (r *InMemoryRegistry) GetNegotiation(_ context.Context, id string) (*core.Negotiation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.negotiations[id]
	if !ok {
		return nil, &core.NotFoundError{Kind: "negotiation", ID: id}
	}
	return n.Clone(), nil
}

func (r *InMemoryRegistry) PutNegotiation(_ context.Context, n *core.Negotiation) error {
	unlock := r.locks.Lock(negotiationKey(n.ID))
	defer unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.storeNegotiation(n.Clone())
	return nil
}

func (r *InMemoryRegistry) UpdateNegotiation(
	_ context.Context,
	id string,
	fn func(n *core.Negotiation) error,
) (*core.Negotiation, error) {
	unlock := r.locks.Lock(negotiationKey(id))
	defer unlock()

	r.mu.RLock()
	current, ok := r.negotiations[id]
	generation := r.generation
	r.mu.RUnlock()
	if !ok {
		return nil, &core.NotFoundError{Kind: "negotiation", ID: id}
	}

	// fn works on a private copy so a failed mutation never becomes visible
	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != generation {
		return nil, &core.NotFoundError{Kind: "negotiation", ID: id}
	}
	r.storeNegotiation(working)
	return working.Clone(), nil
}

// storeNegotiation must be called with r.mu held.
func (r *InMemoryRegistry) storeNegotiation(n *core.Negotiation) {
	r.negotiations[n.ID] = n
	if n.Agreement != nil {
		r.agreements[n.Agreement.ID] = n.ID
	}
}

func (r *InMemoryRegistry) ListNegotiations(_ context.Context) ([]*core.Negotiation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*core.Negotiation, 0, len(r.negotiations))
	for _, n := range r.negotiations {
		list = append(list, n.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (r *InMemoryRegistry) FindAgreement(_ context.Context, agreementID string) (*core.Negotiation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	negotiationID, ok := r.agreements[agreementID]
	if !ok {
		return nil, &core.NotFoundError{Kind: "agreement", ID: agreementID}
	}
	n, ok := r.negotiations[negotiationID]
	if !ok {
		return nil, &core.NotFoundError{Kind: "agreement", ID: agreementID}
	}
	return n.Clone(), nil
}

func (r *InMemoryRegistry) GetTransfer(_ context.Context, id string) (*core.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.transfers[id]
	if !ok {
		return nil, &core.NotFoundError{Kind: "transfer", ID: id}
	}
	return t.Clone(), nil
}

// PutTransfer stores t if its agreement belongs to a finalized negotiation held by this
// registry. The check runs under the write lock, so a transfer never outlives a reset
// that dropped its agreement.
func (r *InMemoryRegistry) PutTransfer(_ context.Context, t *core.Transfer) error {
	unlock := r.locks.Lock(transferKey(t.ID))
	defer unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasFinalizedAgreement(t.AgreementID) {
		return &core.NotFoundError{Kind: "agreement", ID: t.AgreementID}
	}
	r.transfers[t.ID] = t.Clone()
	return nil
}

// hasFinalizedAgreement must be called with r.mu held.
func (r *InMemoryRegistry) hasFinalizedAgreement(agreementID string) bool {
	negotiationID, ok := r.agreements[agreementID]
	if !ok {
		return false
	}
	n, ok := r.negotiations[negotiationID]
	return ok && n.State == core.NegotiationFinalized && n.Agreement != nil
}

func (r *InMemoryRegistry) UpdateTransfer(
	_ context.Context,
	id string,
	fn func(t *core.Transfer) error,
) (*core.Transfer, error) {
	unlock := r.locks.Lock(transferKey(id))
	defer unlock()

	r.mu.RLock()
	current, ok := r.transfers[id]
	generation := r.generation
	r.mu.RUnlock()
	if !ok {
		return nil, &core.NotFoundError{Kind: "transfer", ID: id}
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != generation {
		return nil, &core.NotFoundError{Kind: "transfer", ID: id}
	}
	r.transfers[id] = working
	return working.Clone(), nil
}

func (r *InMemoryRegistry) ListTransfers(_ context.Context) ([]*core.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*core.Transfer, 0, len(r.transfers))
	for _, t := range r.transfers {
		list = append(list, t.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (r *InMemoryRegistry) Reset(_ context.Context) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	negotiations, transfers := len(r.negotiations), len(r.transfers)

	r.negotiations = make(map[string]*core.Negotiation)
	r.transfers = make(map[string]*core.Transfer)
	r.agreements = make(map[string]string)
	r.generation++

	return negotiations, transfers, nil
}
