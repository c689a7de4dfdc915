package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"intentbot/internal/domain"
)

//go:embed default.yaml
var defaultCatalog []byte

// IntentSpec is the on-disk form of one intent.
type IntentSpec struct {
	Name    string   `yaml:"name"`
	Phrases []string `yaml:"phrases"`
	Replies []string `yaml:"replies"`
	Context string   `yaml:"context,omitempty"`
}

// File is the on-disk catalog document.
type File struct {
	Intents []IntentSpec `yaml:"intents"`
}

// Parse decodes a YAML catalog and binds each intent's context deriver.
func Parse(data []byte, registry *Registry) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if registry == nil {
		registry = NewRegistry()
	}
	entries := make([]domain.IntentEntry, 0, len(f.Intents))
	for i, spec := range f.Intents {
		fn, err := registry.Resolve(spec.Context)
		if err != nil {
			return nil, fmt.Errorf("intent %d (%s): %w", i+1, spec.Name, err)
		}
		entries = append(entries, domain.IntentEntry{
			Name:           spec.Name,
			ExamplePhrases: spec.Phrases,
			ReplyTemplates: spec.Replies,
			DeriveContext:  fn,
		})
	}
	return New(entries)
}

// Load reads and parses the catalog at path.
func Load(path string, registry *Registry) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data, registry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default(registry *Registry) (*Catalog, error) {
	return Parse(defaultCatalog, registry)
}
