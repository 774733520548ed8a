package market

import (
	"math"

	"github.com/aristath/cropwatch/internal/domain"
)

const (
	seasonalAmplitude = 0.12
	seasonalPhase     = 2
	seasonalFrequency = 0.5
	noiseSpread       = 0.08
	trendSlope        = 0.05
	trendHorizon      = 6.0
	marketAvgFloor    = 0.95
	marketAvgSpread   = 0.10
)

// PriceSeriesGenerator builds the 12-month synthetic series.
type PriceSeriesGenerator struct {
	rnd domain.RandomSource
}

// NewPriceSeriesGenerator creates a generator drawing from rnd
func NewPriceSeriesGenerator(rnd domain.RandomSource) *PriceSeriesGenerator {
	return &PriceSeriesGenerator{rnd: rnd}
}

// Generate returns one point per calendar month starting in January.
// Months after referenceMonth are flagged predicted and carry a linear upward
// trend proportional to their distance from referenceMonth. Each month draws
// twice from the source: noise, then the market-average factor.
func (g *PriceSeriesGenerator) Generate(basePrice float64, referenceMonth int) []domain.MonthlyPricePoint {
	referenceMonth = clampMonth(referenceMonth)

	points := make([]domain.MonthlyPricePoint, domain.MonthsPerYear)
	for i := 0; i < domain.MonthsPerYear; i++ {
		seasonal := math.Sin(float64(i-seasonalPhase)*seasonalFrequency) * basePrice * seasonalAmplitude
		noise := (g.rnd.Float64() - 0.5) * basePrice * noiseSpread

		predicted := i > referenceMonth
		trend := 0.0
		if predicted {
			trend = basePrice * trendSlope * (float64(i-referenceMonth) / trendHorizon)
		}

		price := roundHalfUp(basePrice + seasonal + noise + trend)
		marketAvg := roundHalfUp(float64(price) * (marketAvgFloor + g.rnd.Float64()*marketAvgSpread))

		points[i] = domain.MonthlyPricePoint{
			Month:         domain.MonthLabels[i],
			Price:         price,
			Predicted:     predicted,
			MarketAverage: marketAvg,
		}
	}

	return points
}

func clampMonth(m int) int {
	if m < 0 {
		return 0
	}
	if m >= domain.MonthsPerYear {
		return domain.MonthsPerYear - 1
	}
	return m
}
