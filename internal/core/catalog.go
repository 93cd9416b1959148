package core

// Asset is a data offering of the provider.
type Asset struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	ContentType string `yaml:"content_type,omitempty" json:"content_type,omitempty"`
	PolicyID    string `yaml:"policy" json:"policy_id"`

	// Properties are free-form descriptive metadata, e.g. "automotive:dataCategory".
	Properties map[string]any `yaml:"properties,omitempty" json:"properties,omitempty"`
}
