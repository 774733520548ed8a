package testing

import (
	"github.com/aristath/cropwatch/internal/domain"
	"github.com/aristath/cropwatch/internal/modules/catalog"
)

// NewCatalogFixture returns a small valid catalog: two crops, two regions, two markets.
func NewCatalogFixture() *catalog.Catalog {
	c, err := catalog.New(
		[]domain.Crop{
			{Name: "Wheat", Icon: "🌾", Unit: "₹/quintal", BasePrice: 2000},
			{Name: "Onion", Icon: "🧅", Unit: "₹/kg", BasePrice: 28},
		},
		[]domain.Region{"Punjab", "Gujarat"},
		[]domain.Market{"APMC Azadpur", "Vashi Market"},
	)
	if err != nil {
		panic(err)
	}
	return c
}
