// Package catalog holds the immutable crop, region and market lists that seed
// every synthetic price.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aristath/cropwatch/internal/domain"
)

var (
	// ErrInvalidCatalog is returned when catalog entries fail validation at load time
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrUnknownCrop is returned by lookups for names not in the catalog
	ErrUnknownCrop = errors.New("unknown crop")
	// ErrUnknownRegion is returned by lookups for regions not in the catalog
	ErrUnknownRegion = errors.New("unknown region")
)

// Catalog is an immutable set of crops, regions and markets.
// Accessors return copies so callers cannot mutate the catalog.
type Catalog struct {
	crops   []domain.Crop
	regions []domain.Region
	markets []domain.Market

	cropIndex   map[string]int
	regionIndex map[string]int
}

// New validates the given lists and builds a catalog.
// It fails fast on empty lists, blank or duplicate names and non-positive base prices.
func New(crops []domain.Crop, regions []domain.Region, markets []domain.Market) (*Catalog, error) {
	if len(crops) == 0 {
		return nil, fmt.Errorf("%w: no crops defined", ErrInvalidCatalog)
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: no regions defined", ErrInvalidCatalog)
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("%w: no markets defined", ErrInvalidCatalog)
	}

	c := &Catalog{
		crops:       make([]domain.Crop, 0, len(crops)),
		regions:     make([]domain.Region, 0, len(regions)),
		markets:     make([]domain.Market, 0, len(markets)),
		cropIndex:   make(map[string]int, len(crops)),
		regionIndex: make(map[string]int, len(regions)),
	}

	for i, crop := range crops {
		crop.Name = strings.TrimSpace(crop.Name)
		if crop.Name == "" {
			return nil, fmt.Errorf("%w: crop #%d has no name", ErrInvalidCatalog, i)
		}
		if math.IsNaN(crop.BasePrice) || math.IsInf(crop.BasePrice, 0) || crop.BasePrice <= 0 {
			return nil, fmt.Errorf("%w: crop %q has invalid base price %v", ErrInvalidCatalog, crop.Name, crop.BasePrice)
		}
		key := normalize(crop.Name)
		if _, dup := c.cropIndex[key]; dup {
			return nil, fmt.Errorf("%w: duplicate crop %q", ErrInvalidCatalog, crop.Name)
		}
		c.cropIndex[key] = len(c.crops)
		c.crops = append(c.crops, crop)
	}

	for i, region := range regions {
		name := strings.TrimSpace(string(region))
		if name == "" {
			return nil, fmt.Errorf("%w: region #%d has no name", ErrInvalidCatalog, i)
		}
		key := normalize(name)
		if _, dup := c.regionIndex[key]; dup {
			return nil, fmt.Errorf("%w: duplicate region %q", ErrInvalidCatalog, name)
		}
		c.regionIndex[key] = len(c.regions)
		c.regions = append(c.regions, domain.Region(name))
	}

	seenMarkets := make(map[string]bool, len(markets))
	for i, market := range markets {
		name := strings.TrimSpace(string(market))
		if name == "" {
			return nil, fmt.Errorf("%w: market #%d has no name", ErrInvalidCatalog, i)
		}
		if seenMarkets[normalize(name)] {
			return nil, fmt.Errorf("%w: duplicate market %q", ErrInvalidCatalog, name)
		}
		seenMarkets[normalize(name)] = true
		c.markets = append(c.markets, domain.Market(name))
	}

	return c, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Crops returns the crops in catalog order
func (c *Catalog) Crops() []domain.Crop {
	out := make([]domain.Crop, len(c.crops))
	copy(out, c.crops)
	return out
}

// Regions returns the regions in catalog order
func (c *Catalog) Regions() []domain.Region {
	out := make([]domain.Region, len(c.regions))
	copy(out, c.regions)
	return out
}

// Markets returns the markets in catalog order
func (c *Catalog) Markets() []domain.Market {
	out := make([]domain.Market, len(c.markets))
	copy(out, c.markets)
	return out
}

// Crop looks up a crop by name (case-insensitive).
func (c *Catalog) Crop(name string) (domain.Crop, error) {
	idx, ok := c.cropIndex[normalize(name)]
	if !ok {
		return domain.Crop{}, fmt.Errorf("%w: %q", ErrUnknownCrop, name)
	}
	return c.crops[idx], nil
}

// Region looks up a region by name (case-insensitive) and returns its canonical form.
func (c *Catalog) Region(name string) (domain.Region, error) {
	idx, ok := c.regionIndex[normalize(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRegion, name)
	}
	return c.regions[idx], nil
}

// DefaultCrop is the first crop in catalog order
func (c *Catalog) DefaultCrop() domain.Crop {
	return c.crops[0]
}

// DefaultRegion is the first region in catalog order
func (c *Catalog) DefaultRegion() domain.Region {
	return c.regions[0]
}
