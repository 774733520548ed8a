package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/aristath/cropwatch/internal/domain"
	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML layout of a catalog.
//
//	crops:
//	  - name: Wheat
//	    icon: "🌾"
//	    unit: ₹/quintal
//	    base_price: 2200
//	regions: [Punjab, Haryana]
//	markets: [APMC Azadpur, Vashi Market]
type File struct {
	Crops   []domain.Crop   `yaml:"crops"`
	Regions []domain.Region `yaml:"regions"`
	Markets []domain.Market `yaml:"markets"`
}

// Parse decodes and validates a YAML catalog.
func Parse(r io.Reader) (*Catalog, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: failed to decode catalog: %v", ErrInvalidCatalog, err)
	}
	return New(f.Crops, f.Regions, f.Markets)
}

// LoadFile reads a YAML catalog from path. An empty path yields the built-in catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return c, nil
}
