// Package catalog serves the provider's assets together with their policies and payloads.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/darmiel/vertrag/internal/core"
)

var _ core.AssetCatalog = (*Catalog)(nil)

// Catalog is an immutable set of assets. Use Manager to swap catalogs at runtime.
type Catalog struct {
	assets   []core.Asset
	index    map[string]int
	policies map[string]core.Policy
	payloads map[string][]byte
}

// New builds a catalog. Every asset must reference a known policy and have a payload.
// Policies are not checked for well-formedness here; that happens when they are evaluated.
func New(policies []core.Policy, assets []core.Asset, payloads map[string][]byte) (*Catalog, error) {
	c := &Catalog{
		assets:   make([]core.Asset, 0, len(assets)),
		index:    make(map[string]int, len(assets)),
		policies: make(map[string]core.Policy, len(policies)),
		payloads: make(map[string][]byte, len(payloads)),
	}

	for idx, p := range policies {
		if p.ID == "" {
			return nil, fmt.Errorf("policy at index %d has empty id", idx)
		}
		if _, exists := c.policies[p.ID]; exists {
			return nil, fmt.Errorf("policy id '%s' is not unique", p.ID)
		}
		c.policies[p.ID] = p.Clone()
	}

	for idx, a := range assets {
		if a.ID == "" {
			return nil, fmt.Errorf("asset at index %d has empty id", idx)
		}
		if _, exists := c.index[a.ID]; exists {
			return nil, fmt.Errorf("asset id '%s' is not unique", a.ID)
		}
		if _, known := c.policies[a.PolicyID]; !known {
			return nil, fmt.Errorf("asset '%s' references unknown policy '%s'", a.ID, a.PolicyID)
		}
		payload, ok := payloads[a.ID]
		if !ok {
			return nil, fmt.Errorf("asset '%s' has no payload", a.ID)
		}
		c.index[a.ID] = len(c.assets)
		c.assets = append(c.assets, a)
		c.payloads[a.ID] = append([]byte(nil), payload...)
	}

	return c, nil
}

func (c *Catalog) Asset(_ context.Context, assetID string) (core.Asset, error) {
	idx, ok := c.index[assetID]
	if !ok {
		return core.Asset{}, &core.NotFoundError{Kind: "asset", ID: assetID}
	}
	return c.assets[idx], nil
}

func (c *Catalog) Assets(_ context.Context) ([]core.Asset, error) {
	return append([]core.Asset(nil), c.assets...), nil
}

func (c *Catalog) Policy(ctx context.Context, assetID string) (core.Policy, error) {
	asset, err := c.Asset(ctx, assetID)
	if err != nil {
		return core.Policy{}, err
	}
	return c.policies[asset.PolicyID].Clone(), nil
}

// Policies returns every policy of the catalog, including ones no asset uses.
func (c *Catalog) Policies() []core.Policy {
	list := make([]core.Policy, 0, len(c.policies))
	for _, p := range c.policies {
		list = append(list, p.Clone())
	}
	return list
}

// PolicyByID looks up a policy by its own id rather than by asset.
func (c *Catalog) PolicyByID(policyID string) (core.Policy, error) {
	p, ok := c.policies[policyID]
	if !ok {
		return core.Policy{}, &core.NotFoundError{Kind: "policy", ID: policyID}
	}
	return p.Clone(), nil
}

func (c *Catalog) Payload(_ context.Context, assetID string) ([]byte, error) {
	payload, ok := c.payloads[assetID]
	if !ok {
		return nil, &core.NotFoundError{Kind: "asset", ID: assetID}
	}
	return append([]byte(nil), payload...), nil
}

// Preview summarizes the top level of an asset's payload without revealing nested data.
// Objects and arrays are replaced by their size, a "metadata" object is shown as is.
func (c *Catalog) Preview(ctx context.Context, assetID string) (map[string]any, error) {
	payload, err := c.Payload(ctx, assetID)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		// not an object, nothing sensible to preview
		return map[string]any{}, nil
	}

	preview := make(map[string]any, len(doc))
	for key, value := range doc {
		switch v := value.(type) {
		case map[string]any:
			if key == "metadata" {
				preview[key] = v
				continue
			}
			preview[key] = fmt.Sprintf("<object with %d keys>", len(v))
		case []any:
			preview[key] = fmt.Sprintf("<array with %d items>", len(v))
		default:
			preview[key] = v
		}
	}
	return preview, nil
}
