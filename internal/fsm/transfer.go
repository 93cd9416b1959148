package fsm

import (
	"fmt"

	"github.com/darmiel/vertrag/internal/core"
)

// TransferMachine drives transfers through REQUESTED, STARTED and COMPLETED.
type TransferMachine struct {
	opts options
}

func NewTransferMachine(opts ...Option) *TransferMachine {
	return &TransferMachine{
		opts: buildOptions(opts),
	}
}

// Create starts a transfer for the agreement produced by n.
// n must be the negotiation currently stored for agreementID; nil means there is none.
// An empty assetID defaults to the agreement's asset.
func (m *TransferMachine) Create(n *core.Negotiation, agreementID, assetID string) (*core.Transfer, error) {
	if n == nil || n.Agreement == nil {
		return nil, &core.NotFoundError{Kind: "agreement", ID: agreementID}
	}
	if n.State != core.NegotiationFinalized || n.Agreement.ID != agreementID {
		return nil, fmt.Errorf("%w: agreement '%s' does not belong to a finalized negotiation",
			core.ErrUnauthorized, agreementID)
	}
	if assetID == "" {
		assetID = n.Agreement.AssetID
	}
	if assetID != n.Agreement.AssetID {
		return nil, fmt.Errorf("%w: agreement '%s' covers asset '%s', not '%s'",
			core.ErrUnauthorized, agreementID, n.Agreement.AssetID, assetID)
	}

	now := m.opts.now()
	return &core.Transfer{
		ID:          m.opts.newID(),
		AgreementID: agreementID,
		AssetID:     assetID,
		ProviderID:  n.Agreement.ProviderID,
		ConsumerID:  n.Agreement.ConsumerID,
		State:       core.TransferRequested,
		History: []core.StateChange{{
			To:     core.TransferRequested.String(),
			Action: "create",
			Time:   now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Apply performs action on t. complete attaches a copy of payload.
// Terminating an already terminated transfer is a no-op. On error t is left unchanged.
func (m *TransferMachine) Apply(t *core.Transfer, action core.TransferAction, payload []byte, reason string) error {
	next, ok := t.State.Next(action)
	if !ok {
		return &core.TransitionError{
			Entity: "transfer",
			ID:     t.ID,
			State:  t.State.String(),
			Action: action.String(),
		}
	}
	if next == t.State {
		return nil
	}

	now := m.opts.now()

	switch action {
	case core.ActionComplete:
		if payload == nil {
			return fmt.Errorf("transfer '%s': complete requires a payload", t.ID)
		}
		t.Payload = append([]byte(nil), payload...)
		t.CompletedAt = &now
	case core.ActionTerminateTransfer:
		if reason == "" {
			reason = DefaultTerminationReason
		}
		t.TerminationReason = reason
	}

	t.History = append(t.History, core.StateChange{
		From:   t.State.String(),
		To:     next.String(),
		Action: action.String(),
		Reason: reason,
		Time:   now,
	})
	t.State = next
	t.UpdatedAt = now
	return nil
}

// FetchData returns a copy of the payload of a completed transfer.
func FetchData(t *core.Transfer) ([]byte, error) {
	if t.State != core.TransferCompleted {
		return nil, fmt.Errorf("%w: transfer '%s' is %s, data is only available once COMPLETED",
			core.ErrInvalidState, t.ID, t.State)
	}
	return append([]byte(nil), t.Payload...), nil
}
