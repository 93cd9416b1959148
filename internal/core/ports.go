package core

import "context"

// AssetCatalog resolves assets offered by the provider together with their policy and payload.
// Implementations answer synchronously and are read-only.
type AssetCatalog interface {
	// Asset returns the asset with the given id or an error wrapping ErrNotFound.
	Asset(ctx context.Context, assetID string) (Asset, error)

	// Assets lists all offered assets.
	Assets(ctx context.Context) ([]Asset, error)

	// Policy returns the policy attached to the asset.
	Policy(ctx context.Context, assetID string) (Policy, error)

	// Payload returns a copy of the asset's data.
	Payload(ctx context.Context, assetID string) ([]byte, error)
}

// Evaluator judges a policy for one action against a requester's attributes.
type Evaluator interface {
	Evaluate(policy Policy, action Action, attrs AttributeSet) (Decision, error)
}
