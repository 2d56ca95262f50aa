package vehicles

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedFile struct {
	Vehicles []Vehicle `yaml:"vehicles"`
}

// LoadSeed decodes a YAML seed document.
func LoadSeed(r io.Reader) ([]Vehicle, error) {
	var doc seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode vehicle seed: %w", err)
	}
	for i := range doc.Vehicles {
		if doc.Vehicles[i].Slug == "" {
			doc.Vehicles[i].Slug = Slugify(doc.Vehicles[i].Title)
		}
	}
	return doc.Vehicles, nil
}

// LoadSeedFile reads a seed from disk; an empty path returns the built-in seed.
func LoadSeedFile(path string) ([]Vehicle, error) {
	if path == "" {
		return DefaultSeed()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vehicle seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// DefaultSeed returns the built-in demo vehicles.
func DefaultSeed() ([]Vehicle, error) {
	return LoadSeed(bytes.NewReader(defaultSeed))
}
