package core

import "context"

// NegotiationStore holds the negotiations known to one participant.
type NegotiationStore interface {
	GetNegotiation(ctx context.Context, id string) (*Negotiation, error)
	PutNegotiation(ctx context.Context, n *Negotiation) error

	// UpdateNegotiation applies fn to a private copy of the negotiation while holding
	// the negotiation's lock. The copy is stored only if fn returns nil.
	UpdateNegotiation(ctx context.Context, id string, fn func(n *Negotiation) error) (*Negotiation, error)

	ListNegotiations(ctx context.Context) ([]*Negotiation, error)

	// FindAgreement returns the negotiation that produced the agreement.
	FindAgreement(ctx context.Context, agreementID string) (*Negotiation, error)
}

// TransferStore holds the transfers known to one participant.
type TransferStore interface {
	GetTransfer(ctx context.Context, id string) (*Transfer, error)

	// PutTransfer fails with ErrNotFound unless t cites the agreement of a finalized
	// negotiation in the same registry.
	PutTransfer(ctx context.Context, t *Transfer) error
	UpdateTransfer(ctx context.Context, id string, fn func(t *Transfer) error) (*Transfer, error)
	ListTransfers(ctx context.Context) ([]*Transfer, error)
}

// Registry is the single point of mutation for negotiations and transfers.
type Registry interface {
	NegotiationStore
	TransferStore

	// Reset clears all negotiations and transfers atomically and reports how many were dropped.
	Reset(ctx context.Context) (negotiations int, transfers int, err error)
}
