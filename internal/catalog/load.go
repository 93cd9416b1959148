package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/validation"
)

//go:embed defaults
var defaults embed.FS

const defaultCatalogFile = "defaults/catalog.yaml"

// File is the on-disk layout of a catalog.
type File struct {
	Policies []core.Policy `yaml:"policies"`
	Assets   []AssetConfig `yaml:"assets"`
}

// AssetConfig is an asset plus the source of its payload.
type AssetConfig struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	ContentType string         `yaml:"content_type"`
	Policy      string         `yaml:"policy"`
	Properties  map[string]any `yaml:"properties"`
	Source      SourceConfig   `yaml:"source"`
}

func (a AssetConfig) asset() core.Asset {
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	return core.Asset{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		ContentType: contentType,
		PolicyID:    a.Policy,
		Properties:  a.Properties,
	}
}

// Load reads the catalog file at the given path.
// Payload files are resolved relative to the catalog file's directory.
func Load(path string) (*Catalog, error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return Parse(os.DirFS(dir), name)
}

// LoadDefault returns the built-in automotive demo catalog.
func LoadDefault() (*Catalog, error) {
	return Parse(defaults, defaultCatalogFile)
}

// Parse reads the catalog file name from fsys and resolves all payloads.
func Parse(fsys fs.FS, name string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	if err := validation.ValidatePolicies(file.Policies); err != nil {
		return nil, fmt.Errorf("validating catalog policies: %w", err)
	}

	// file sources are relative to the catalog file
	base, err := fs.Sub(fsys, pathDir(name))
	if err != nil {
		return nil, fmt.Errorf("resolving catalog directory: %w", err)
	}

	assets := make([]core.Asset, 0, len(file.Assets))
	payloads := make(map[string][]byte, len(file.Assets))
	for _, a := range file.Assets {
		payload, err := loadPayload(base, a.ID, a.Source)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a.asset())
		payloads[a.ID] = payload
	}

	return New(file.Policies, assets, payloads)
}

func pathDir(name string) string {
	dir := filepath.ToSlash(filepath.Dir(name))
	if dir == "" {
		return "."
	}
	return dir
}
