package catalog

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aristath/cropwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Sizes(t *testing.T) {
	c := Default()

	assert.Len(t, c.Crops(), 8)
	assert.Len(t, c.Regions(), 8)
	assert.Len(t, c.Markets(), 5)
	assert.Equal(t, "Wheat", c.DefaultCrop().Name)
	assert.Equal(t, domain.Region("Punjab"), c.DefaultRegion())
}

func TestCatalog_Lookup(t *testing.T) {
	c := Default()

	crop, err := c.Crop("cotton")
	require.NoError(t, err)
	assert.Equal(t, "Cotton", crop.Name)
	assert.Equal(t, 6800.0, crop.BasePrice)

	region, err := c.Region(" uttar pradesh ")
	require.NoError(t, err)
	assert.Equal(t, domain.Region("Uttar Pradesh"), region)

	_, err = c.Crop("Barley")
	assert.ErrorIs(t, err, ErrUnknownCrop)

	_, err = c.Region("Kerala")
	assert.ErrorIs(t, err, ErrUnknownRegion)
}

func TestCatalog_AccessorsReturnCopies(t *testing.T) {
	c := Default()

	crops := c.Crops()
	crops[0].BasePrice = -1
	markets := c.Markets()
	markets[0] = "Tampered"

	assert.Equal(t, 2200.0, c.Crops()[0].BasePrice)
	assert.Equal(t, domain.Market("APMC Azadpur"), c.Markets()[0])
}

func TestNew_RejectsMalformedEntries(t *testing.T) {
	validCrops := []domain.Crop{{Name: "Wheat", BasePrice: 2200}}
	validRegions := []domain.Region{"Punjab"}
	validMarkets := []domain.Market{"APMC Azadpur"}

	tests := []struct {
		name    string
		crops   []domain.Crop
		regions []domain.Region
		markets []domain.Market
	}{
		{"no crops", nil, validRegions, validMarkets},
		{"no regions", validCrops, nil, validMarkets},
		{"no markets", validCrops, validRegions, nil},
		{"zero base price", []domain.Crop{{Name: "Wheat"}}, validRegions, validMarkets},
		{"negative base price", []domain.Crop{{Name: "Wheat", BasePrice: -5}}, validRegions, validMarkets},
		{"NaN base price", []domain.Crop{{Name: "Wheat", BasePrice: math.NaN()}}, validRegions, validMarkets},
		{"infinite base price", []domain.Crop{{Name: "Wheat", BasePrice: math.Inf(1)}}, validRegions, validMarkets},
		{"blank crop name", []domain.Crop{{Name: "  ", BasePrice: 10}}, validRegions, validMarkets},
		{"duplicate crop", []domain.Crop{{Name: "Wheat", BasePrice: 1}, {Name: "wheat", BasePrice: 2}}, validRegions, validMarkets},
		{"blank region", validCrops, []domain.Region{""}, validMarkets},
		{"duplicate region", validCrops, []domain.Region{"Punjab", "PUNJAB"}, validMarkets},
		{"blank market", validCrops, validRegions, []domain.Market{" "}},
		{"duplicate market", validCrops, validRegions, []domain.Market{"Koyambedu", "koyambedu"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.crops, tt.regions, tt.markets)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestParse(t *testing.T) {
	doc := `
crops:
  - name: Wheat
    icon: "🌾"
    unit: ₹/quintal
    base_price: 2200
  - name: Onion
    unit: ₹/kg
    base_price: 28
regions: [Punjab, Gujarat]
markets:
  - APMC Azadpur
  - Vashi Market
`
	c, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Len(t, c.Crops(), 2)
	onion, err := c.Crop("Onion")
	require.NoError(t, err)
	assert.Equal(t, "₹/kg", onion.Unit)
	assert.Equal(t, []domain.Market{"APMC Azadpur", "Vashi Market"}, c.Markets())
}

func TestParse_Errors(t *testing.T) {
	t.Run("unknown field", func(t *testing.T) {
		_, err := Parse(strings.NewReader("crops: []\nfarms: []\n"))
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})

	t.Run("missing base price", func(t *testing.T) {
		doc := "crops:\n  - name: Wheat\nregions: [Punjab]\nmarkets: [Koyambedu]\n"
		_, err := Parse(strings.NewReader(doc))
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("empty path uses built-in catalog", func(t *testing.T) {
		c, err := LoadFile("")
		require.NoError(t, err)
		assert.Len(t, c.Crops(), 8)
	})

	t.Run("reads yaml from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		doc := "crops:\n  - name: Rice\n    base_price: 1900\nregions: [Punjab]\nmarkets: [Koyambedu]\n"
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		c, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Rice", c.DefaultCrop().Name)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
