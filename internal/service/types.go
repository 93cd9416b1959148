package service

import "github.com/darmiel/vertrag/internal/core"

type CreateNegotiationRequest struct {
	// ConsumerID identifies the participant asking for the asset.
	ConsumerID string `json:"consumer_id"`

	AssetID string `json:"asset_id"`

	// Attributes describe the consumer and are frozen into the negotiation.
	Attributes core.AttributeSet `json:"attributes"`
}

// NegotiationResult is the negotiation after an action, together with the
// policy decision if the action evaluated one.
type NegotiationResult struct {
	Negotiation *core.Negotiation `json:"negotiation"`
	Decision    *core.Decision    `json:"decision,omitempty"`
}

type CreateTransferRequest struct {
	AgreementID string `json:"agreement_id"`

	// AssetID is optional and defaults to the asset covered by the agreement.
	AssetID string `json:"asset_id,omitempty"`

	// ConsumerID is optional. If set it must match the consumer of the agreement.
	ConsumerID string `json:"consumer_id,omitempty"`
}

type ExplainRequest struct {
	// AssetID selects the policy attached to a catalog asset.
	AssetID string `json:"asset_id,omitempty"`

	// Policy is evaluated instead of an asset's policy when set.
	Policy *core.Policy `json:"policy,omitempty"`

	// Action defaults to USE.
	Action core.Action `json:"action,omitempty"`

	Attributes core.AttributeSet `json:"attributes"`
}

type ExplainResponse struct {
	AssetID  string        `json:"asset_id,omitempty"`
	Policy   core.Policy   `json:"policy"`
	Summary  string        `json:"summary"`
	Decision core.Decision `json:"decision"`
}

// CatalogEntry is an asset as offered to consumers, with its policy spelled out.
type CatalogEntry struct {
	core.Asset
	Policy  core.Policy `json:"policy"`
	Summary string      `json:"policy_summary"`
}

type ResetResult struct {
	Negotiations int `json:"negotiations"`
	Transfers    int `json:"transfers"`
}

type ReloadResult struct {
	Assets   int `json:"assets"`
	Policies int `json:"policies"`
}

type AuditFilter struct {
	CorrelationID string
	NegotiationID string
	TransferID    string
	Participant   string
}

func (f AuditFilter) isEmpty() bool {
	return f == AuditFilter{}
}

func (f AuditFilter) matches(e core.AuditEntry) bool {
	if f.CorrelationID != "" && e.ID != f.CorrelationID {
		return false
	}
	if f.NegotiationID != "" && e.NegotiationID != f.NegotiationID {
		return false
	}
	if f.TransferID != "" && e.TransferID != f.TransferID {
		return false
	}
	if f.Participant != "" && e.Participant != f.Participant {
		return false
	}
	return true
}
