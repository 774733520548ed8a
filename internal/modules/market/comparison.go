package market

import "github.com/aristath/cropwatch/internal/domain"

const (
	quoteFloor  = 0.90
	quoteSpread = 0.22
)

// MarketComparisonGenerator prices the crop independently at every market.
type MarketComparisonGenerator struct {
	rnd     domain.RandomSource
	markets []domain.Market
}

// NewMarketComparisonGenerator creates a generator over the given markets
func NewMarketComparisonGenerator(rnd domain.RandomSource, markets []domain.Market) *MarketComparisonGenerator {
	m := make([]domain.Market, len(markets))
	copy(m, markets)
	return &MarketComparisonGenerator{rnd: rnd, markets: m}
}

// Generate returns one quote per market in catalog order, each uniform in
// [0.90, 1.12] x basePrice before rounding.
func (g *MarketComparisonGenerator) Generate(basePrice float64) []domain.MarketQuote {
	quotes := make([]domain.MarketQuote, 0, len(g.markets))
	for _, m := range g.markets {
		quotes = append(quotes, domain.MarketQuote{
			Market: m.Label(),
			Price:  roundHalfUp(basePrice * (quoteFloor + g.rnd.Float64()*quoteSpread)),
		})
	}
	return quotes
}
