package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// TransferState is a step in the data transfer lifecycle.
type TransferState uint8

const (
	TransferUnknown TransferState = iota
	TransferRequested
	TransferStarted
	TransferCompleted
	TransferTerminated
	transferStateCount
)

var transferStateNames = [transferStateCount]string{
	TransferUnknown:    "UNKNOWN",
	TransferRequested:  "REQUESTED",
	TransferStarted:    "STARTED",
	TransferCompleted:  "COMPLETED",
	TransferTerminated: "TERMINATED",
}

func (s TransferState) String() string {
	if s >= transferStateCount {
		return fmt.Sprintf("TransferState(%d)", uint8(s))
	}
	return transferStateNames[s]
}

func (s TransferState) IsTerminal() bool {
	return s == TransferCompleted || s == TransferTerminated
}

func (s TransferState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *TransferState) UnmarshalText(text []byte) error {
	for i, name := range transferStateNames {
		if strings.EqualFold(name, string(text)) {
			*s = TransferState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown transfer state '%s'", text)
}

type TransferAction uint8

const (
	TransferActionInvalid TransferAction = iota
	ActionStart
	ActionComplete
	ActionTerminateTransfer
	transferActionCount
)

var transferActionNames = [transferActionCount]string{
	TransferActionInvalid:   "",
	ActionStart:             "start",
	ActionComplete:          "complete",
	ActionTerminateTransfer: "terminate",
}

func (a TransferAction) String() string {
	if a >= transferActionCount {
		return fmt.Sprintf("TransferAction(%d)", uint8(a))
	}
	return transferActionNames[a]
}

func (a TransferAction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *TransferAction) UnmarshalText(text []byte) error {
	parsed, err := ParseTransferAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func ParseTransferAction(s string) (TransferAction, error) {
	norm := normalizeActionName(s)
	for i := ActionStart; i < transferActionCount; i++ {
		if transferActionNames[i] == norm {
			return i, nil
		}
	}
	return TransferActionInvalid, fmt.Errorf("unknown transfer action '%s'", s)
}

var transferTransitions = [transferStateCount][transferActionCount]TransferState{
	TransferRequested: {
		ActionStart:             TransferStarted,
		ActionTerminateTransfer: TransferTerminated,
	},
	TransferStarted: {
		ActionComplete:          TransferCompleted,
		ActionTerminateTransfer: TransferTerminated,
	},
	TransferTerminated: {
		ActionTerminateTransfer: TransferTerminated,
	},
}

// Next returns the state reached by applying action in s.
func (s TransferState) Next(action TransferAction) (TransferState, bool) {
	if s >= transferStateCount || action >= transferActionCount {
		return TransferUnknown, false
	}
	next := transferTransitions[s][action]
	return next, next != TransferUnknown
}

// Transfer hands the payload of an agreed asset over to the consumer.
type Transfer struct {
	ID          string        `json:"id"`
	AgreementID string        `json:"agreement_id"`
	AssetID     string        `json:"asset_id"`
	ProviderID  string        `json:"provider_id,omitempty"`
	ConsumerID  string        `json:"consumer_id,omitempty"`
	State       TransferState `json:"state"`

	// Payload is attached on completion and only handed out through a data fetch.
	Payload json.RawMessage `json:"-"`

	// PayloadDigest identifies the attached payload without revealing it.
	PayloadDigest string `json:"payload_digest,omitempty"`

	TerminationReason string `json:"termination_reason,omitempty"`

	History []StateChange `json:"history"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (t *Transfer) Clone() *Transfer {
	if t == nil {
		return nil
	}
	cp := *t
	if t.Payload != nil {
		cp.Payload = append(json.RawMessage(nil), t.Payload...)
	}
	cp.History = slices.Clone(t.History)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}
