package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"

	"github.com/mitchellh/mapstructure"
)

const (
	SourceTypeInline = "inline"
	SourceTypeFile   = "file"
)

// SourceConfig selects where an asset's payload comes from.
type SourceConfig struct {
	Type   string         // e.g., "inline", "file"
	Config map[string]any // remaining fields, decoded per type
}

func (s *SourceConfig) UnmarshalYAML(unmarshal func(any) error) error {
	var raw map[string]any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if t, ok := raw["type"]; ok {
		typ, isString := t.(string)
		if !isString {
			return fmt.Errorf("source type must be a string, got %T", t)
		}
		s.Type = typ
		delete(raw, "type")
	}
	s.Config = raw
	return nil
}

type InlineSourceConfig struct {
	// Data is the payload itself, any YAML value that can be expressed as JSON.
	Data any `mapstructure:"data"`
}

type FileSourceConfig struct {
	// Path to a JSON document, relative to the catalog file.
	Path string `mapstructure:"path"`
}

func decodeSourceConfig(assetID string, raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("creating decoder for source of asset '%s': %w", assetID, err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decoding source of asset '%s': %w", assetID, err)
	}
	return nil
}

// loadPayload resolves the source of an asset into JSON bytes.
// fsys is rooted at the directory that file paths are relative to.
func loadPayload(fsys fs.FS, assetID string, src SourceConfig) ([]byte, error) {
	switch src.Type {
	case SourceTypeInline:
		var conf InlineSourceConfig
		if err := decodeSourceConfig(assetID, src.Config, &conf); err != nil {
			return nil, err
		}
		if conf.Data == nil {
			return nil, fmt.Errorf("inline source of asset '%s' is missing 'data'", assetID)
		}
		data, err := json.Marshal(normalize(conf.Data))
		if err != nil {
			return nil, fmt.Errorf("encoding inline data of asset '%s': %w", assetID, err)
		}
		return data, nil

	case SourceTypeFile:
		var conf FileSourceConfig
		if err := decodeSourceConfig(assetID, src.Config, &conf); err != nil {
			return nil, err
		}
		if conf.Path == "" {
			return nil, fmt.Errorf("file source of asset '%s' is missing 'path'", assetID)
		}
		data, err := fs.ReadFile(fsys, path.Clean(conf.Path))
		if err != nil {
			return nil, fmt.Errorf("reading data of asset '%s': %w", assetID, err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("data of asset '%s' at '%s' is not valid JSON", assetID, conf.Path)
		}
		return data, nil

	case "":
		return nil, fmt.Errorf("asset '%s' has no source type", assetID)
	default:
		return nil, fmt.Errorf("asset '%s' has unknown source type '%s'", assetID, src.Type)
	}
}

// normalize turns YAML maps with non-string keys into maps JSON can encode.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
