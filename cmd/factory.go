package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/darmiel/vertrag/internal/catalog"
	"github.com/darmiel/vertrag/internal/config"
	"github.com/darmiel/vertrag/internal/consumer"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/service"
	"github.com/darmiel/vertrag/internal/store"
	"github.com/darmiel/vertrag/pkg/client"
)

// Provider is what the consumer side commands need from a provider, local or remote.
type Provider interface {
	consumer.Provider
	ListAssets(ctx context.Context) ([]service.CatalogEntry, error)
	GetAsset(ctx context.Context, assetID string) (*service.CatalogEntry, error)
	PreviewAsset(ctx context.Context, assetID string) (map[string]any, error)
	Explain(ctx context.Context, req service.ExplainRequest) (*service.ExplainResponse, error)
	ListNegotiations(ctx context.Context, consumerID string) ([]*core.Negotiation, error)
	ListAgreements(ctx context.Context) ([]core.Agreement, error)
	ListTransfers(ctx context.Context, agreementID string) ([]*core.Transfer, error)
}

var (
	_ Provider = (*service.Service)(nil)
	_ Provider = (*client.Client)(nil)
)

type Factory struct {
	// ConfigPath is the provider configuration (participant, catalog, audit).
	ConfigPath string

	// CatalogPath overrides the catalog of the provider configuration.
	CatalogPath string

	// Attributes are added to (and override) the configured consumer attributes.
	Attributes attributeFlag
}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) remoteAddr() string {
	return viper.GetString(ServerAddrKey)
}

// GetClient returns a client for the configured remote provider.
func (f *Factory) GetClient() (*client.Client, error) {
	server := f.remoteAddr()
	if server == "" {
		return nil, fmt.Errorf("server address not configured (use --server or set VERTRAG_ADDR)")
	}
	return client.New(server)
}

// LoadConfig loads the provider configuration, or the defaults if no file was given.
func (f *Factory) LoadConfig() (*config.Config, error) {
	cfg := config.Default()
	if f.ConfigPath != "" {
		loaded, err := config.Load(f.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f.CatalogPath != "" {
		cfg.Catalog.Path = f.CatalogPath
	}
	return cfg, nil
}

// LoadCatalog returns a manager for the configured catalog file or the built-in catalog.
func (f *Factory) LoadCatalog(cfg *config.Config) (*catalog.Manager, error) {
	loader := catalog.LoadDefault
	if path := cfg.Catalog.Path; path != "" {
		loader = func() (*catalog.Catalog, error) {
			return catalog.Load(path)
		}
	}
	return catalog.NewManager(loader)
}

// GetLocalService builds an in-process provider with an in-memory registry and no auditing.
func (f *Factory) GetLocalService() (*service.Service, error) {
	cfg, err := f.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	manager, err := f.LoadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	return service.New(
		cfg.Participant.ID,
		manager,
		store.NewInMemoryRegistry(), // for local CLI operations, in-memory store is sufficient
		nil,                         // for local CLI operations, we don't do auditing
		nil,
	), nil
}

// GetProvider returns the remote provider if a server is configured and an in-process one otherwise.
func (f *Factory) GetProvider() (Provider, error) {
	if f.remoteAddr() != "" {
		return f.GetClient()
	}
	return f.GetLocalService()
}

// Identity resolves the consumer identity: defaults, then user config, then --attr flags.
func (f *Factory) Identity() (consumer.Identity, error) {
	identity := consumer.DefaultIdentity()
	if id := viper.GetString(IdentityIDKey); id != "" {
		identity.ID = id
	}
	if name := viper.GetString(IdentityCompanyKey); name != "" {
		identity.CompanyName = name
	}
	if raw := viper.GetStringMap(IdentityAttributesKey); len(raw) > 0 {
		attrs, err := core.NewAttributeSet(raw)
		if err != nil {
			return consumer.Identity{}, fmt.Errorf("parsing %s: %w", IdentityAttributesKey, err)
		}
		identity.Attributes = attrs
	}
	for name, value := range f.Attributes.attrs {
		if identity.Attributes == nil {
			identity.Attributes = core.AttributeSet{}
		}
		identity.Attributes[name] = value
	}
	return identity, nil
}

func (f *Factory) bindConfigFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&f.ConfigPath, "config", "c", "", "The provider configuration file to use")
	flags.StringVar(&f.CatalogPath, "catalog", "", "Catalog file to serve instead of the configured one")
}

func (f *Factory) bindAttributeFlag(flags *pflag.FlagSet) {
	flags.VarP(&f.Attributes, "attr", "a", "Consumer attribute as key=value, repeatable (lists: key=a,b)")
}
