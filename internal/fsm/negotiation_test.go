package fsm

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/engine"
)

func sequentialIDs() Option {
	i := 0
	return WithIDGenerator(func() string {
		i++
		return fmt.Sprintf("id-%d", i)
	})
}

func fixedClock() Option {
	at := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	return WithClock(func() time.Time { return at })
}

func tier1Only() core.Policy {
	return core.Policy{
		ID: "policy-tier1-only",
		Permissions: []core.Permission{{
			Action: core.ActionUse,
			Constraints: []core.Constraint{
				{LeftOperand: "partner_type", Operator: core.OpEq, RightOperand: core.StringValue("tier1_supplier")},
			},
		}},
		Prohibitions: []core.Prohibition{{Action: core.ActionDistribute}},
	}
}

func newNegotiation(m *NegotiationMachine, partnerType string) *core.Negotiation {
	return m.Create("provider", "consumer", "part-catalog-2024", tier1Only(), core.AttributeSet{
		"partner_type": core.StringValue(partnerType),
	})
}

func TestNegotiationMachine_HappyPath(t *testing.T) {
	m := NewNegotiationMachine(engine.New(), sequentialIDs(), fixedClock())
	n := newNegotiation(m, "tier1_supplier")
	require.Equal(t, core.NegotiationRequested, n.State)

	decision, err := m.Apply(n, core.ActionRequestOffer, "")
	require.NoError(t, err)
	require.NotNil(t, decision)
	assert.True(t, decision.Allowed)
	assert.Equal(t, core.NegotiationOffered, n.State)
	assert.Same(t, n.Decision, decision)

	for _, action := range []core.NegotiationAction{core.ActionAgree, core.ActionVerify, core.ActionFinalize} {
		d, err := m.Apply(n, action, "")
		require.NoError(t, err, action.String())
		assert.Nil(t, d)
	}

	assert.Equal(t, core.NegotiationFinalized, n.State)
	require.NotNil(t, n.Agreement)
	assert.Equal(t, n.ID, n.Agreement.NegotiationID)
	assert.Equal(t, "part-catalog-2024", n.Agreement.AssetID)
	assert.Equal(t, "policy-tier1-only", n.Agreement.Policy.ID)

	var states []string
	for _, h := range n.History {
		states = append(states, h.To)
	}
	assert.Equal(t, []string{"REQUESTED", "OFFERED", "AGREED", "VERIFIED", "FINALIZED"}, states)
}

func TestNegotiationMachine_DeniedOfferTerminates(t *testing.T) {
	m := NewNegotiationMachine(engine.New())
	n := newNegotiation(m, "unauthorized")

	decision, err := m.Apply(n, core.ActionRequestOffer, "")
	require.NoError(t, err)
	require.NotNil(t, decision)
	assert.False(t, decision.Allowed)
	assert.Equal(t, core.NegotiationTerminated, n.State)
	assert.Equal(t, core.ReasonNoPermission, n.TerminationReason)
	assert.Nil(t, n.Agreement)
}

func TestNegotiationMachine_SkippingStatesFails(t *testing.T) {
	m := NewNegotiationMachine(engine.New())
	n := newNegotiation(m, "tier1_supplier")
	_, err := m.Apply(n, core.ActionRequestOffer, "")
	require.NoError(t, err)

	before := n.Clone()
	_, err = m.Apply(n, core.ActionFinalize, "")
	require.ErrorIs(t, err, core.ErrInvalidTransition)

	var terr *core.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "OFFERED", terr.State)
	assert.Equal(t, "finalize", terr.Action)
	assert.Equal(t, before, n)
}

func TestNegotiationMachine_TerminateIsIdempotent(t *testing.T) {
	m := NewNegotiationMachine(engine.New())
	n := newNegotiation(m, "tier1_supplier")

	_, err := m.Apply(n, core.ActionTerminate, "")
	require.NoError(t, err)
	assert.Equal(t, core.NegotiationTerminated, n.State)
	assert.Equal(t, DefaultTerminationReason, n.TerminationReason)
	historyLen := len(n.History)

	_, err = m.Apply(n, core.ActionTerminate, "second call")
	require.NoError(t, err)
	assert.Equal(t, core.NegotiationTerminated, n.State)
	assert.Equal(t, DefaultTerminationReason, n.TerminationReason)
	assert.Len(t, n.History, historyLen)
}

func TestNegotiationMachine_CannotTerminateFinalized(t *testing.T) {
	m := NewNegotiationMachine(engine.New())
	n := newNegotiation(m, "tier1_supplier")
	for _, a := range []core.NegotiationAction{core.ActionRequestOffer, core.ActionAgree, core.ActionVerify, core.ActionFinalize} {
		_, err := m.Apply(n, a, "")
		require.NoError(t, err)
	}

	_, err := m.Apply(n, core.ActionTerminate, "too late")
	require.ErrorIs(t, err, core.ErrInvalidTransition)
	assert.Equal(t, core.NegotiationFinalized, n.State)
}

func TestNegotiationMachine_InvalidPolicyLeavesStateUnchanged(t *testing.T) {
	m := NewNegotiationMachine(engine.New())
	bad := core.Policy{ID: "bad", Permissions: []core.Permission{{
		Action:      core.ActionUse,
		Constraints: []core.Constraint{{LeftOperand: "region", Operator: core.OpHasAny, RightOperand: core.StringValue("EU")}},
	}}}
	n := m.Create("provider", "consumer", "asset", bad, nil)

	_, err := m.Apply(n, core.ActionRequestOffer, "")
	require.ErrorIs(t, err, core.ErrInvalidPolicy)
	assert.Equal(t, core.NegotiationRequested, n.State)
	assert.Nil(t, n.Decision)
	assert.Len(t, n.History, 1)
}

func TestNegotiationMachine_SnapshotsPolicyAndAttributes(t *testing.T) {
	m := NewNegotiationMachine(engine.New())
	policy := tier1Only()
	attrs := core.AttributeSet{"partner_type": core.StringValue("tier1_supplier")}
	n := m.Create("provider", "consumer", "asset", policy, attrs)

	policy.Permissions[0].Constraints[0].RightOperand = core.StringValue("nobody")
	attrs["partner_type"] = core.StringValue("unauthorized")

	decision, err := m.Apply(n, core.ActionRequestOffer, "")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

// Every observed state sequence is a prefix of the happy path, optionally ending in TERMINATED.
func TestNegotiationMachine_Monotonic(t *testing.T) {
	chain := []core.NegotiationState{
		core.NegotiationRequested, core.NegotiationOffered, core.NegotiationAgreed,
		core.NegotiationVerified, core.NegotiationFinalized,
	}
	actions := core.NegotiationActions()

	m := NewNegotiationMachine(engine.New())
	// try every action sequence of length 4
	var walk func(prefix []core.NegotiationAction)
	walk = func(prefix []core.NegotiationAction) {
		if len(prefix) == 4 {
			n := newNegotiation(m, "tier1_supplier")
			observed := []core.NegotiationState{n.State}
			for _, a := range prefix {
				if _, err := m.Apply(n, a, ""); err == nil && n.State != observed[len(observed)-1] {
					observed = append(observed, n.State)
				}
			}
			for i, s := range observed {
				if s == core.NegotiationTerminated {
					assert.Equal(t, len(observed)-1, i, "TERMINATED must be last: %v", observed)
					continue
				}
				assert.Equal(t, chain[i], s, "sequence %v observed %v", prefix, observed)
			}
			return
		}
		for _, a := range actions {
			walk(append(append([]core.NegotiationAction(nil), prefix...), a))
		}
	}
	walk(nil)
}
