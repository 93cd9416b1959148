package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/darmiel/vertrag/internal/core"
)

var _ core.AssetCatalog = (*Manager)(nil)

// Loader produces a fresh catalog, e.g. by re-reading the catalog file.
type Loader func() (*Catalog, error)

// Manager holds the active catalog and swaps it atomically on reload.
// Negotiations already in flight keep the policy snapshot they were created with.
type Manager struct {
	current atomic.Pointer[Catalog]
	mu      sync.Mutex
	loader  Loader
}

func NewManager(loader Loader) (*Manager, error) {
	m := &Manager{loader: loader}
	if _, err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) Current() *Catalog {
	return m.current.Load()
}

// Reload loads a new catalog and makes it active. On error the previous catalog stays active.
func (m *Manager) Reload() (*Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidate, err := m.loader()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	m.current.Store(candidate)
	return candidate, nil
}

func (m *Manager) Asset(ctx context.Context, assetID string) (core.Asset, error) {
	return m.Current().Asset(ctx, assetID)
}

func (m *Manager) Assets(ctx context.Context) ([]core.Asset, error) {
	return m.Current().Assets(ctx)
}

func (m *Manager) Policy(ctx context.Context, assetID string) (core.Policy, error) {
	return m.Current().Policy(ctx, assetID)
}

func (m *Manager) Payload(ctx context.Context, assetID string) ([]byte, error) {
	return m.Current().Payload(ctx, assetID)
}

func (m *Manager) Preview(ctx context.Context, assetID string) (map[string]any, error) {
	return m.Current().Preview(ctx, assetID)
}
