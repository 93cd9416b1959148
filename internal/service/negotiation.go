package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/validation"
)

// CreateNegotiation opens a negotiation for a catalog asset in REQUESTED.
// The asset's current policy and the consumer's attributes are snapshotted.
func (s *Service) CreateNegotiation(ctx context.Context, req CreateNegotiationRequest) (_ *core.Negotiation, err error) {
	entry := core.AuditEntry{
		Participant: req.ConsumerID,
		AssetID:     req.AssetID,
	}
	ctx, done := s.track(ctx, "negotiation.create", &entry)
	defer func() { done(err) }()

	logger := log.Ctx(ctx)
	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("consumer_id", req.ConsumerID).Str("asset_id", req.AssetID)
	})

	if req.ConsumerID == "" {
		return nil, badRequest("consumer_id is required")
	}
	if req.AssetID == "" {
		return nil, badRequest("asset_id is required")
	}
	if vErr := validation.ValidateAttributes(req.Attributes); vErr != nil {
		return nil, badRequest("%v", vErr)
	}

	asset, err := s.catalog.Asset(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}
	policy, err := s.catalog.Policy(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	entry.PolicyID = policy.ID

	n := s.negotiations.Create(s.participantID, req.ConsumerID, asset.ID, policy, req.Attributes)
	if err := s.registry.PutNegotiation(ctx, n); err != nil {
		return nil, fmt.Errorf("storing negotiation: %w", err)
	}

	entry.NegotiationID = n.ID
	entry.State = n.State.String()
	s.metrics.Transitions.WithLabelValues("negotiation", "create", n.State.String()).Inc()

	logger.Info().
		Str("negotiation_id", n.ID).
		Str("policy_id", policy.ID).
		Msg("negotiation requested")

	return n, nil
}

// AdvanceNegotiation applies action to the stored negotiation.
// Denied offers are reported through the decision, not as an error.
func (s *Service) AdvanceNegotiation(
	ctx context.Context,
	id string,
	action core.NegotiationAction,
	reason string,
) (_ *NegotiationResult, err error) {
	entry := core.AuditEntry{NegotiationID: id}
	ctx, done := s.track(ctx, "negotiation."+action.String(), &entry)
	defer func() { done(err) }()

	logger := log.Ctx(ctx)
	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("negotiation_id", id).Str("action", action.String())
	})

	if action == core.NegotiationActionInvalid {
		return nil, badRequest("unknown negotiation action")
	}

	var decision *core.Decision
	n, err := s.registry.UpdateNegotiation(ctx, id, func(n *core.Negotiation) error {
		d, err := s.negotiations.Apply(n, action, reason)
		decision = d
		return err
	})
	if err != nil {
		logger.Warn().Err(err).Msg("negotiation action rejected")
		return nil, err
	}

	entry.Participant = n.ConsumerID
	entry.AssetID = n.AssetID
	entry.State = n.State.String()
	if n.Agreement != nil {
		entry.AgreementID = n.Agreement.ID
	}
	if action == core.ActionTerminate {
		entry.Reason = n.TerminationReason
	}
	s.recordDecision(&entry, decision)
	s.metrics.Transitions.WithLabelValues("negotiation", action.String(), n.State.String()).Inc()

	ev := logger.Info().Str("state", n.State.String())
	if decision != nil {
		ev = ev.Bool("allowed", decision.Allowed).Str("reason", decision.Reason)
	}
	ev.Msg("negotiation advanced")

	return &NegotiationResult{
		Negotiation: n,
		Decision:    decision,
	}, nil
}

func (s *Service) GetNegotiation(ctx context.Context, id string) (_ *core.Negotiation, err error) {
	ctx, done := s.read(ctx, "negotiation.get")
	defer func() { done(err) }()

	return s.registry.GetNegotiation(ctx, id)
}

// ListNegotiations returns all negotiations, oldest first.
// A non-empty consumerID restricts the result to that consumer.
func (s *Service) ListNegotiations(ctx context.Context, consumerID string) (_ []*core.Negotiation, err error) {
	ctx, done := s.read(ctx, "negotiation.list")
	defer func() { done(err) }()

	all, err := s.registry.ListNegotiations(ctx)
	if err != nil {
		return nil, err
	}
	if consumerID == "" {
		return all, nil
	}
	filtered := make([]*core.Negotiation, 0, len(all))
	for _, n := range all {
		if n.ConsumerID == consumerID {
			filtered = append(filtered, n)
		}
	}
	return filtered, nil
}

// ListAgreements returns the agreements of all finalized negotiations.
func (s *Service) ListAgreements(ctx context.Context) (_ []core.Agreement, err error) {
	ctx, done := s.read(ctx, "agreement.list")
	defer func() { done(err) }()

	negotiations, err := s.registry.ListNegotiations(ctx)
	if err != nil {
		return nil, err
	}
	agreements := make([]core.Agreement, 0)
	for _, n := range negotiations {
		if n.State == core.NegotiationFinalized && n.Agreement != nil {
			agreements = append(agreements, *n.Agreement)
		}
	}
	return agreements, nil
}

func (s *Service) GetAgreement(ctx context.Context, id string) (_ *core.Agreement, err error) {
	ctx, done := s.read(ctx, "agreement.get")
	defer func() { done(err) }()

	n, err := s.registry.FindAgreement(ctx, id)
	if err != nil {
		return nil, err
	}
	return n.Agreement, nil
}
