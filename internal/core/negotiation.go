package core

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// NegotiationState is a step in the contract negotiation lifecycle.
type NegotiationState uint8

const (
	NegotiationUnknown NegotiationState = iota
	NegotiationRequested
	NegotiationOffered
	NegotiationAgreed
	NegotiationVerified
	NegotiationFinalized
	NegotiationTerminated
	negotiationStateCount
)

var negotiationStateNames = [negotiationStateCount]string{
	NegotiationUnknown:    "UNKNOWN",
	NegotiationRequested:  "REQUESTED",
	NegotiationOffered:    "OFFERED",
	NegotiationAgreed:     "AGREED",
	NegotiationVerified:   "VERIFIED",
	NegotiationFinalized:  "FINALIZED",
	NegotiationTerminated: "TERMINATED",
}

func (s NegotiationState) String() string {
	if s >= negotiationStateCount {
		return fmt.Sprintf("NegotiationState(%d)", uint8(s))
	}
	return negotiationStateNames[s]
}

// IsTerminal reports whether no further transitions are possible.
func (s NegotiationState) IsTerminal() bool {
	return s == NegotiationFinalized || s == NegotiationTerminated
}

func (s NegotiationState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *NegotiationState) UnmarshalText(text []byte) error {
	for i, name := range negotiationStateNames {
		if strings.EqualFold(name, string(text)) {
			*s = NegotiationState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown negotiation state '%s'", text)
}

// NegotiationAction is a request to move a negotiation forward or end it.
type NegotiationAction uint8

const (
	NegotiationActionInvalid NegotiationAction = iota
	ActionRequestOffer
	ActionAgree
	ActionVerify
	ActionFinalize
	ActionTerminate
	negotiationActionCount
)

var negotiationActionNames = [negotiationActionCount]string{
	NegotiationActionInvalid: "",
	ActionRequestOffer:       "requestOffer",
	ActionAgree:              "agree",
	ActionVerify:             "verify",
	ActionFinalize:           "finalize",
	ActionTerminate:          "terminate",
}

func (a NegotiationAction) String() string {
	if a >= negotiationActionCount {
		return fmt.Sprintf("NegotiationAction(%d)", uint8(a))
	}
	return negotiationActionNames[a]
}

func (a NegotiationAction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *NegotiationAction) UnmarshalText(text []byte) error {
	parsed, err := ParseNegotiationAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseNegotiationAction accepts the action name case-insensitively,
// also in dashed or underscored form ("request-offer").
func ParseNegotiationAction(s string) (NegotiationAction, error) {
	norm := normalizeActionName(s)
	for i := ActionRequestOffer; i < negotiationActionCount; i++ {
		if normalizeActionName(negotiationActionNames[i]) == norm {
			return i, nil
		}
	}
	return NegotiationActionInvalid, fmt.Errorf("unknown negotiation action '%s'", s)
}

// NegotiationActions lists the valid action names in protocol order.
func NegotiationActions() []NegotiationAction {
	return []NegotiationAction{ActionRequestOffer, ActionAgree, ActionVerify, ActionFinalize, ActionTerminate}
}

func normalizeActionName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "").Replace(s)
}

// negotiationTransitions maps state x action to the next state.
// NegotiationUnknown marks a pairing that is not allowed.
// requestOffer lists the optimistic target; a denied offer ends in TERMINATED instead.
var negotiationTransitions = [negotiationStateCount][negotiationActionCount]NegotiationState{
	NegotiationRequested: {
		ActionRequestOffer: NegotiationOffered,
		ActionTerminate:    NegotiationTerminated,
	},
	NegotiationOffered: {
		ActionAgree:     NegotiationAgreed,
		ActionTerminate: NegotiationTerminated,
	},
	NegotiationAgreed: {
		ActionVerify:    NegotiationVerified,
		ActionTerminate: NegotiationTerminated,
	},
	NegotiationVerified: {
		ActionFinalize:  NegotiationFinalized,
		ActionTerminate: NegotiationTerminated,
	},
	NegotiationTerminated: {
		ActionTerminate: NegotiationTerminated,
	},
}

// Next returns the state reached by applying action in s.
func (s NegotiationState) Next(action NegotiationAction) (NegotiationState, bool) {
	if s >= negotiationStateCount || action >= negotiationActionCount {
		return NegotiationUnknown, false
	}
	next := negotiationTransitions[s][action]
	return next, next != NegotiationUnknown
}

// StateChange is one entry of an entity's state history.
type StateChange struct {
	From   string    `json:"from,omitempty"`
	To     string    `json:"to"`
	Action string    `json:"action"`
	Reason string    `json:"reason,omitempty"`
	Time   time.Time `json:"time"`
}

// Agreement is the immutable result of a finalized negotiation
// and the only authorization a transfer can cite.
type Agreement struct {
	ID            string    `json:"id"`
	NegotiationID string    `json:"negotiation_id"`
	AssetID       string    `json:"asset_id"`
	ProviderID    string    `json:"provider_id"`
	ConsumerID    string    `json:"consumer_id"`
	Policy        Policy    `json:"policy"`
	SignedAt      time.Time `json:"signed_at"`
}

// Negotiation is a single contract handshake between a provider and a consumer for one asset.
type Negotiation struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
	ConsumerID string `json:"consumer_id"`
	AssetID    string `json:"asset_id"`

	// Policy is a snapshot taken at creation; later catalog changes do not affect it.
	Policy Policy `json:"policy"`

	// Attributes are frozen at creation and used for the offer evaluation.
	Attributes AttributeSet `json:"attributes"`

	State NegotiationState `json:"state"`

	// Decision is the result of the last policy evaluation, if any.
	Decision *Decision `json:"decision,omitempty"`

	// Agreement is set once the negotiation is finalized.
	Agreement *Agreement `json:"agreement,omitempty"`

	TerminationReason string `json:"termination_reason,omitempty"`

	History []StateChange `json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy that shares no mutable state with n.
func (n *Negotiation) Clone() *Negotiation {
	if n == nil {
		return nil
	}
	cp := *n
	cp.Policy = n.Policy.Clone()
	cp.Attributes = n.Attributes.Clone()
	if n.Decision != nil {
		d := *n.Decision
		d.ConstraintsChecked = slices.Clone(n.Decision.ConstraintsChecked)
		d.Obligations = slices.Clone(n.Decision.Obligations)
		cp.Decision = &d
	}
	if n.Agreement != nil {
		a := *n.Agreement
		a.Policy = n.Agreement.Policy.Clone()
		cp.Agreement = &a
	}
	cp.History = slices.Clone(n.History)
	return &cp
}
