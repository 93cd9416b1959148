// Package consumer implements the consumer side of the connector. An Agent negotiates
// with a provider on behalf of one participant and mirrors everything it observes
// into its own registry.
package consumer

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/vertrag/internal/audit"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/fsm"
	"github.com/darmiel/vertrag/internal/service"
	"github.com/darmiel/vertrag/internal/store"
	"github.com/darmiel/vertrag/internal/validation"
	"github.com/darmiel/vertrag/pkg/client"
)

// Provider is the provider connector as seen by a consumer,
// either in-process or over HTTP.
type Provider interface {
	CreateNegotiation(ctx context.Context, req service.CreateNegotiationRequest) (*core.Negotiation, error)
	AdvanceNegotiation(
		ctx context.Context,
		id string,
		action core.NegotiationAction,
		reason string,
	) (*service.NegotiationResult, error)
	CreateTransfer(ctx context.Context, req service.CreateTransferRequest) (*core.Transfer, error)
	AdvanceTransfer(ctx context.Context, id string, action core.TransferAction, reason string) (*core.Transfer, error)
	FetchData(ctx context.Context, id string) ([]byte, error)
}

var (
	_ Provider = (*service.Service)(nil)
	_ Provider = (*client.Client)(nil)
)

// negotiationSteps are the actions taken after creation, in protocol order.
var negotiationSteps = []core.NegotiationAction{
	core.ActionRequestOffer,
	core.ActionAgree,
	core.ActionVerify,
	core.ActionFinalize,
}

type Agent struct {
	provider Provider
	registry core.Registry

	mu       sync.RWMutex
	identity Identity
}

// New creates an agent acting as identity. A nil registry uses a fresh in-memory one.
func New(provider Provider, identity Identity, registry core.Registry) *Agent {
	if registry == nil {
		registry = store.NewInMemoryRegistry()
	}
	return &Agent{
		provider: provider,
		registry: registry,
		identity: identity.clone(),
	}
}

func (a *Agent) Identity() Identity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.identity.clone()
}

// SetAttributes replaces the attributes presented in future negotiations.
// Running negotiations keep the attributes they were created with.
func (a *Agent) SetAttributes(attrs core.AttributeSet) error {
	if err := validation.ValidateAttributes(attrs); err != nil {
		return fmt.Errorf("%w: %v", core.ErrBadRequest, err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.identity.Attributes = attrs.Clone()
	return nil
}

// Negotiate runs a negotiation for assetID up to FINALIZED.
//
// A denied offer is not an error: the returned negotiation is TERMINATED and carries the decision.
// Protocol errors are returned after the state observed so far has been recorded.
func (a *Agent) Negotiate(ctx context.Context, assetID string) (*core.Negotiation, error) {
	identity := a.Identity()
	logger := log.Ctx(ctx).With().
		Str("consumer_id", identity.ID).
		Str("asset_id", assetID).
		Logger()

	n, err := a.provider.CreateNegotiation(ctx, service.CreateNegotiationRequest{
		ConsumerID: identity.ID,
		AssetID:    assetID,
		Attributes: identity.Attributes,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting negotiation: %w", err)
	}
	if err := a.registry.PutNegotiation(ctx, n); err != nil {
		return nil, fmt.Errorf("recording negotiation: %w", err)
	}
	logger = logger.With().Str("negotiation_id", n.ID).Logger()
	logger.Debug().Msg("negotiation requested")

	for _, action := range negotiationSteps {
		res, err := a.provider.AdvanceNegotiation(ctx, n.ID, action, "")
		if err != nil {
			return n, fmt.Errorf("negotiation '%s': %s: %w", n.ID, action, err)
		}
		n = res.Negotiation
		if err := a.registry.PutNegotiation(ctx, n); err != nil {
			return n, fmt.Errorf("recording negotiation: %w", err)
		}

		if n.State == core.NegotiationTerminated {
			logger.Info().Str("reason", n.TerminationReason).Msg("negotiation terminated by provider")
			return n, nil
		}
	}

	logger.Info().Str("agreement_id", n.Agreement.ID).Msg("negotiation finalized")
	return n, nil
}

// Transfer retrieves the data covered by one of the agent's agreements.
// If a step fails after the transfer was created the transfer is terminated on the provider.
func (a *Agent) Transfer(ctx context.Context, agreementID string) (*core.Transfer, error) {
	n, err := a.registry.FindAgreement(ctx, agreementID)
	if err != nil {
		return nil, err
	}

	logger := log.Ctx(ctx).With().Str("agreement_id", agreementID).Logger()

	t, err := a.provider.CreateTransfer(ctx, service.CreateTransferRequest{
		AgreementID: agreementID,
		AssetID:     n.Agreement.AssetID,
		ConsumerID:  n.ConsumerID,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting transfer: %w", err)
	}
	if err := a.registry.PutTransfer(ctx, t); err != nil {
		return nil, fmt.Errorf("recording transfer: %w", err)
	}
	logger = logger.With().Str("transfer_id", t.ID).Logger()

	for _, action := range []core.TransferAction{core.ActionStart, core.ActionComplete} {
		next, err := a.provider.AdvanceTransfer(ctx, t.ID, action, "")
		if err != nil {
			a.abort(ctx, logger, t, err)
			return t, fmt.Errorf("transfer '%s': %s: %w", t.ID, action, err)
		}
		t = next
		if err := a.registry.PutTransfer(ctx, t); err != nil {
			return t, fmt.Errorf("recording transfer: %w", err)
		}
	}

	data, err := a.provider.FetchData(ctx, t.ID)
	if err != nil {
		return t, fmt.Errorf("fetching transfer data: %w", err)
	}
	if digest := audit.Digest(data); t.PayloadDigest != "" && digest != t.PayloadDigest {
		return t, fmt.Errorf("transfer '%s': received data does not match digest %s", t.ID, t.PayloadDigest)
	}

	t.Payload = data
	if err := a.registry.PutTransfer(ctx, t); err != nil {
		return t, fmt.Errorf("recording transfer: %w", err)
	}

	logger.Info().Int("size", len(data)).Msg("transfer data received")
	return t, nil
}

func (a *Agent) abort(ctx context.Context, logger zerolog.Logger, t *core.Transfer, cause error) {
	terminated, err := a.provider.AdvanceTransfer(ctx, t.ID, core.ActionTerminateTransfer, "consumer aborted: "+cause.Error())
	if err != nil {
		logger.Warn().Err(err).Msg("failed to terminate transfer")
		return
	}
	if err := a.registry.PutTransfer(ctx, terminated); err != nil {
		logger.Warn().Err(err).Msg("failed to record terminated transfer")
	}
}

// ReceivedData returns the payload received for a completed transfer.
func (a *Agent) ReceivedData(ctx context.Context, transferID string) ([]byte, error) {
	t, err := a.registry.GetTransfer(ctx, transferID)
	if err != nil {
		return nil, err
	}
	return fsm.FetchData(t)
}

func (a *Agent) Negotiations(ctx context.Context) ([]*core.Negotiation, error) {
	return a.registry.ListNegotiations(ctx)
}

func (a *Agent) Transfers(ctx context.Context) ([]*core.Transfer, error) {
	return a.registry.ListTransfers(ctx)
}

// Agreements lists the agreements the agent holds.
func (a *Agent) Agreements(ctx context.Context) ([]core.Agreement, error) {
	negotiations, err := a.registry.ListNegotiations(ctx)
	if err != nil {
		return nil, err
	}
	var agreements []core.Agreement
	for _, n := range negotiations {
		if n.State == core.NegotiationFinalized && n.Agreement != nil {
			agreements = append(agreements, *n.Agreement)
		}
	}
	return agreements, nil
}

// Reset forgets all locally recorded negotiations and transfers.
func (a *Agent) Reset(ctx context.Context) error {
	_, _, err := a.registry.Reset(ctx)
	return err
}
