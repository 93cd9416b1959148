package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "negotiation.create", "transfer.fetch")
	Action string `json:"action"`

	// Participant is the id of the consumer (or operator) the request was made for
	Participant string `json:"participant,omitempty"`

	// Entities touched by the request
	NegotiationID string `json:"negotiation_id,omitempty"`
	AgreementID   string `json:"agreement_id,omitempty"`
	TransferID    string `json:"transfer_id,omitempty"`
	AssetID       string `json:"asset_id,omitempty"`

	// State is the entity state after the request
	State string `json:"state,omitempty"`

	// Decision details, only set when a policy was evaluated
	PolicyID string `json:"policy_id,omitempty"`
	Allowed  *bool  `json:"allowed,omitempty"`
	Reason   string `json:"reason,omitempty"`

	Error string `json:"error,omitempty"`

	// Metadata contains additional details (payload digest, reset counts, ...)
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error

	// GetRecent returns up to limit of the newest entries, oldest first.
	GetRecent(limit int) ([]AuditEntry, error)

	// Find returns up to limit of the newest entries matching filter, oldest first.
	Find(filter func(entry AuditEntry) bool, limit int) ([]AuditEntry, error)

	Close() error
}
