package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/vertrag/internal/audit"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/fsm"
)

// CreateTransfer opens a transfer in REQUESTED for the asset covered by a finalized agreement.
func (s *Service) CreateTransfer(ctx context.Context, req CreateTransferRequest) (_ *core.Transfer, err error) {
	entry := core.AuditEntry{
		Participant: req.ConsumerID,
		AgreementID: req.AgreementID,
		AssetID:     req.AssetID,
	}
	ctx, done := s.track(ctx, "transfer.create", &entry)
	defer func() { done(err) }()

	logger := log.Ctx(ctx)
	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("agreement_id", req.AgreementID)
	})

	if req.AgreementID == "" {
		return nil, badRequest("agreement_id is required")
	}

	n, err := s.registry.FindAgreement(ctx, req.AgreementID)
	if err != nil {
		return nil, err
	}
	if req.ConsumerID != "" && n.Agreement != nil && n.Agreement.ConsumerID != req.ConsumerID {
		return nil, fmt.Errorf("%w: agreement '%s' was not signed by '%s'",
			core.ErrUnauthorized, req.AgreementID, req.ConsumerID)
	}

	t, err := s.transfers.Create(n, req.AgreementID, req.AssetID)
	if err != nil {
		logger.Warn().Err(err).Msg("transfer refused")
		return nil, err
	}
	if err := s.registry.PutTransfer(ctx, t); err != nil {
		return nil, fmt.Errorf("storing transfer: %w", err)
	}

	entry.Participant = t.ConsumerID
	entry.AssetID = t.AssetID
	entry.TransferID = t.ID
	entry.State = t.State.String()
	s.metrics.Transitions.WithLabelValues("transfer", "create", t.State.String()).Inc()

	logger.Info().Str("transfer_id", t.ID).Str("asset_id", t.AssetID).Msg("transfer requested")
	return t, nil
}

// AdvanceTransfer applies action to the stored transfer.
// complete attaches a copy of the asset's payload as currently found in the catalog.
func (s *Service) AdvanceTransfer(
	ctx context.Context,
	id string,
	action core.TransferAction,
	reason string,
) (_ *core.Transfer, err error) {
	entry := core.AuditEntry{TransferID: id}
	ctx, done := s.track(ctx, "transfer."+action.String(), &entry)
	defer func() { done(err) }()

	logger := log.Ctx(ctx)
	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("transfer_id", id).Str("action", action.String())
	})

	if action == core.TransferActionInvalid {
		return nil, badRequest("unknown transfer action")
	}

	t, err := s.registry.UpdateTransfer(ctx, id, func(t *core.Transfer) error {
		var payload []byte
		// only load the payload when the transition is valid so that
		// an invalid action reports the transition error
		if next, ok := t.State.Next(action); ok && next == core.TransferCompleted && t.State != next {
			p, err := s.catalog.Payload(ctx, t.AssetID)
			if err != nil {
				return fmt.Errorf("loading payload of asset '%s': %w", t.AssetID, err)
			}
			payload = p
		}
		if err := s.transfers.Apply(t, action, payload, reason); err != nil {
			return err
		}
		if action == core.ActionComplete {
			t.PayloadDigest = audit.Digest(t.Payload)
		}
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Msg("transfer action rejected")
		return nil, err
	}

	entry.Participant = t.ConsumerID
	entry.AgreementID = t.AgreementID
	entry.AssetID = t.AssetID
	entry.State = t.State.String()
	if t.PayloadDigest != "" {
		entry.Metadata = map[string]any{
			"payload_digest": t.PayloadDigest,
			"payload_size":   len(t.Payload),
		}
	}
	if action == core.ActionTerminateTransfer {
		entry.Reason = t.TerminationReason
	}
	s.metrics.Transitions.WithLabelValues("transfer", action.String(), t.State.String()).Inc()

	logger.Info().Str("state", t.State.String()).Msg("transfer advanced")
	return t, nil
}

// FetchData returns the payload of a completed transfer.
func (s *Service) FetchData(ctx context.Context, id string) (_ []byte, err error) {
	entry := core.AuditEntry{TransferID: id}
	ctx, done := s.track(ctx, "transfer.fetch", &entry)
	defer func() { done(err) }()

	t, err := s.registry.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.Participant = t.ConsumerID
	entry.AgreementID = t.AgreementID
	entry.AssetID = t.AssetID
	entry.State = t.State.String()

	data, err := fsm.FetchData(t)
	if err != nil {
		return nil, err
	}
	entry.Metadata = map[string]any{"payload_digest": t.PayloadDigest}

	log.Ctx(ctx).Debug().Str("transfer_id", id).Int("size", len(data)).Msg("transfer data fetched")
	return data, nil
}

func (s *Service) GetTransfer(ctx context.Context, id string) (_ *core.Transfer, err error) {
	ctx, done := s.read(ctx, "transfer.get")
	defer func() { done(err) }()

	return s.registry.GetTransfer(ctx, id)
}

// ListTransfers returns all transfers, oldest first.
// A non-empty agreementID restricts the result to transfers citing that agreement.
func (s *Service) ListTransfers(ctx context.Context, agreementID string) (_ []*core.Transfer, err error) {
	ctx, done := s.read(ctx, "transfer.list")
	defer func() { done(err) }()

	all, err := s.registry.ListTransfers(ctx)
	if err != nil {
		return nil, err
	}
	if agreementID == "" {
		return all, nil
	}
	filtered := make([]*core.Transfer, 0, len(all))
	for _, t := range all {
		if t.AgreementID == agreementID {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}
