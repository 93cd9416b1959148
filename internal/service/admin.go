package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/vertrag/internal/core"
)

// ListAssets returns the catalog, each asset with its policy.
func (s *Service) ListAssets(ctx context.Context) (_ []CatalogEntry, err error) {
	ctx, done := s.read(ctx, "catalog.list")
	defer func() { done(err) }()

	assets, err := s.catalog.Assets(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]CatalogEntry, 0, len(assets))
	for _, asset := range assets {
		entry, err := s.catalogEntry(ctx, asset)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) GetAsset(ctx context.Context, assetID string) (_ *CatalogEntry, err error) {
	ctx, done := s.read(ctx, "catalog.get")
	defer func() { done(err) }()

	asset, err := s.catalog.Asset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	entry, err := s.catalogEntry(ctx, asset)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// PreviewAsset describes the shape of an asset's payload without handing out its data.
func (s *Service) PreviewAsset(ctx context.Context, assetID string) (_ map[string]any, err error) {
	ctx, done := s.read(ctx, "catalog.preview")
	defer func() { done(err) }()

	return s.catalog.Preview(ctx, assetID)
}

func (s *Service) catalogEntry(ctx context.Context, asset core.Asset) (CatalogEntry, error) {
	policy, err := s.catalog.Policy(ctx, asset.ID)
	if err != nil {
		return CatalogEntry{}, err
	}
	return CatalogEntry{
		Asset:   asset,
		Policy:  policy,
		Summary: policy.Describe(),
	}, nil
}

// Reset drops all negotiations and transfers.
func (s *Service) Reset(ctx context.Context) (_ *ResetResult, err error) {
	entry := core.AuditEntry{Participant: s.participantID}
	ctx, done := s.track(ctx, "admin.reset", &entry)
	defer func() { done(err) }()

	negotiations, transfers, err := s.registry.Reset(ctx)
	if err != nil {
		return nil, fmt.Errorf("resetting registry: %w", err)
	}
	s.metrics.Resets.Inc()
	entry.Metadata = map[string]any{
		"negotiations": negotiations,
		"transfers":    transfers,
	}

	log.Ctx(ctx).Info().
		Int("negotiations", negotiations).
		Int("transfers", transfers).
		Msg("registry reset")

	return &ResetResult{
		Negotiations: negotiations,
		Transfers:    transfers,
	}, nil
}

// ReloadCatalog re-reads the catalog. Running negotiations keep their policy snapshot.
func (s *Service) ReloadCatalog(ctx context.Context) (_ *ReloadResult, err error) {
	entry := core.AuditEntry{Participant: s.participantID}
	ctx, done := s.track(ctx, "catalog.reload", &entry)
	defer func() { done(err) }()

	c, err := s.catalog.Reload()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("catalog reload failed, keeping previous catalog")
		return nil, err
	}
	assets, err := c.Assets(ctx)
	if err != nil {
		return nil, err
	}
	result := &ReloadResult{
		Assets:   len(assets),
		Policies: len(c.Policies()),
	}
	entry.Metadata = map[string]any{
		"assets":   result.Assets,
		"policies": result.Policies,
	}

	log.Ctx(ctx).Info().Int("assets", result.Assets).Int("policies", result.Policies).Msg("catalog reloaded")
	return result, nil
}

// AuditLog returns up to limit of the newest audit entries, oldest first.
// Filters that are empty match everything.
func (s *Service) AuditLog(ctx context.Context, filter AuditFilter, limit int) (_ []core.AuditEntry, err error) {
	_, done := s.read(ctx, "audit.list")
	defer func() { done(err) }()

	if filter.isEmpty() {
		return s.auditor.GetRecent(limit)
	}
	return s.auditor.Find(filter.matches, limit)
}
