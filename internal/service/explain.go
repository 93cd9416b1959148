package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/vertrag/internal/core"
)

// Explain evaluates a policy without touching any negotiation.
// The policy is either given inline or taken from the asset.
func (s *Service) Explain(ctx context.Context, req ExplainRequest) (_ *ExplainResponse, err error) {
	ctx, done := s.read(ctx, "policy.explain")
	defer func() { done(err) }()

	var policy core.Policy
	switch {
	case req.Policy != nil:
		policy = *req.Policy
	case req.AssetID != "":
		policy, err = s.catalog.Policy(ctx, req.AssetID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, badRequest("either asset_id or policy is required")
	}

	action := req.Action
	if action == "" {
		action = core.ActionUse
	}

	decision, err := s.evaluator.Evaluate(policy, action, req.Attributes)
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Debug().
		Str("policy_id", policy.ID).
		Str("action", string(action)).
		Bool("allowed", decision.Allowed).
		Msg("explained policy")

	return &ExplainResponse{
		AssetID:  req.AssetID,
		Policy:   policy,
		Summary:  policy.Describe(),
		Decision: decision,
	}, nil
}
