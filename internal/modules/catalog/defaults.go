package catalog

import "github.com/aristath/cropwatch/internal/domain"

var defaultCrops = []domain.Crop{
	{Name: "Wheat", Icon: "🌾", Unit: "₹/quintal", BasePrice: 2200},
	{Name: "Rice", Icon: "🌾", Unit: "₹/quintal", BasePrice: 1900},
	{Name: "Maize", Icon: "🌽", Unit: "₹/quintal", BasePrice: 1750},
	{Name: "Cotton", Icon: "☁️", Unit: "₹/quintal", BasePrice: 6800},
	{Name: "Tomato", Icon: "🍅", Unit: "₹/kg", BasePrice: 42},
	{Name: "Onion", Icon: "🧅", Unit: "₹/kg", BasePrice: 28},
	{Name: "Potato", Icon: "🥔", Unit: "₹/kg", BasePrice: 18},
	{Name: "Soybean", Icon: "🫘", Unit: "₹/quintal", BasePrice: 4400},
}

var defaultRegions = []domain.Region{
	"Punjab", "Haryana", "Maharashtra", "Uttar Pradesh",
	"Madhya Pradesh", "Rajasthan", "Gujarat", "Karnataka",
}

var defaultMarkets = []domain.Market{
	"APMC Azadpur", "Vashi Market", "Koyambedu", "Gultekdi", "Shahibaugh",
}

// Default returns the built-in catalog: 8 crops, 8 regions, 5 markets.
func Default() *Catalog {
	c, err := New(defaultCrops, defaultRegions, defaultMarkets)
	if err != nil {
		// The built-in lists are static; failing here is a programming error.
		panic(err)
	}
	return c
}
