package fsm

import (
	"fmt"

	"github.com/darmiel/vertrag/internal/core"
)

// NegotiationMachine drives negotiations through REQUESTED, OFFERED, AGREED, VERIFIED and FINALIZED,
// consulting the policy evaluator at the offer step.
type NegotiationMachine struct {
	evaluator core.Evaluator
	opts      options
}

func NewNegotiationMachine(evaluator core.Evaluator, opts ...Option) *NegotiationMachine {
	return &NegotiationMachine{
		evaluator: evaluator,
		opts:      buildOptions(opts),
	}
}

// Create starts a negotiation in REQUESTED.
// The policy and attributes are copied so later changes by the caller have no effect.
func (m *NegotiationMachine) Create(providerID, consumerID, assetID string, policy core.Policy, attrs core.AttributeSet) *core.Negotiation {
	now := m.opts.now()
	return &core.Negotiation{
		ID:         m.opts.newID(),
		ProviderID: providerID,
		ConsumerID: consumerID,
		AssetID:    assetID,
		Policy:     policy.Clone(),
		Attributes: attrs.Clone(),
		State:      core.NegotiationRequested,
		History: []core.StateChange{{
			To:     core.NegotiationRequested.String(),
			Action: "create",
			Time:   now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply performs action on n. It returns the policy decision for requestOffer and nil otherwise.
//
// A denied offer is not an error: the negotiation moves to TERMINATED with the decision's reason.
// Terminating an already terminated negotiation is a no-op. On error n is left unchanged.
func (m *NegotiationMachine) Apply(n *core.Negotiation, action core.NegotiationAction, reason string) (*core.Decision, error) {
	next, ok := n.State.Next(action)
	if !ok {
		return nil, &core.TransitionError{
			Entity: "negotiation",
			ID:     n.ID,
			State:  n.State.String(),
			Action: action.String(),
		}
	}
	if next == n.State {
		return nil, nil
	}

	var decision *core.Decision
	now := m.opts.now()

	switch action {
	case core.ActionRequestOffer:
		d, err := m.evaluator.Evaluate(n.Policy, core.ActionUse, n.Attributes)
		if err != nil {
			return nil, fmt.Errorf("negotiation '%s': evaluating offer: %w", n.ID, err)
		}
		decision = &d
		n.Decision = &d
		reason = d.Reason
		if !d.Allowed {
			next = core.NegotiationTerminated
			n.TerminationReason = d.Reason
		}

	case core.ActionFinalize:
		n.Agreement = &core.Agreement{
			ID:            m.opts.newID(),
			NegotiationID: n.ID,
			AssetID:       n.AssetID,
			ProviderID:    n.ProviderID,
			ConsumerID:    n.ConsumerID,
			Policy:        n.Policy.Clone(),
			SignedAt:      now,
		}

	case core.ActionTerminate:
		if reason == "" {
			reason = DefaultTerminationReason
		}
		n.TerminationReason = reason
	}

	n.History = append(n.History, core.StateChange{
		From:   n.State.String(),
		To:     next.String(),
		Action: action.String(),
		Reason: reason,
		Time:   now,
	})
	n.State = next
	n.UpdatedAt = now

	return decision, nil
}
