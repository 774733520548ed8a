package market

import (
	"testing"

	"github.com/aristath/cropwatch/internal/domain"
	testingpkg "github.com/aristath/cropwatch/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceSeriesGenerator_Structure(t *testing.T) {
	gen := NewPriceSeriesGenerator(NewSeededSource(7))

	for _, base := range []float64{18, 42, 2000, 6800} {
		for ref := 0; ref < domain.MonthsPerYear; ref++ {
			series := gen.Generate(base, ref)
			require.Len(t, series, domain.MonthsPerYear)

			for i, p := range series {
				assert.Equal(t, domain.MonthLabels[i], p.Month)
				assert.Equal(t, i > ref, p.Predicted, "base=%v ref=%d month=%d", base, ref, i)
			}
		}
	}
}

func TestPriceSeriesGenerator_NeutralNoiseScenario(t *testing.T) {
	// 0.5 zeroes the noise term and makes the market-average factor exactly 1.
	gen := NewPriceSeriesGenerator(testingpkg.ConstantSource(0.5))

	series := gen.Generate(2000, 5)

	expected := []int{1798, 1885, 2000, 2115, 2202, 2239, 2235, 2177, 2084, 1982, 1902, 1865}
	for i, p := range series {
		assert.Equal(t, expected[i], p.Price, "month %s", p.Month)
		assert.Equal(t, p.Price, p.MarketAverage, "month %s", p.Month)
	}

	for i := 0; i <= 5; i++ {
		assert.False(t, series[i].Predicted)
	}
	for i := 6; i < 12; i++ {
		assert.True(t, series[i].Predicted)
	}
}

func TestPriceSeriesGenerator_TrendContribution(t *testing.T) {
	// Same neutral draws with and without the trend: the difference is the trend term.
	gen := NewPriceSeriesGenerator(testingpkg.ConstantSource(0.5))

	withTrend := gen.Generate(2000, 5)
	noTrend := gen.Generate(2000, 11)

	assert.Equal(t, withTrend[5].Price, noTrend[5].Price, "reference month carries no trend")
	assert.Equal(t, 100, withTrend[11].Price-noTrend[11].Price, "December carries the full 0.05*2000*(6/6) trend")
	assert.InDelta(t, 2000*0.05*(1.0/6.0), float64(withTrend[6].Price-noTrend[6].Price), 1)
}

func TestPriceSeriesGenerator_DrawOrder(t *testing.T) {
	// Per month: noise draw then market-average draw.
	values := make([]float64, 0, 24)
	for i := 0; i < 12; i++ {
		values = append(values, 0.5, 0.0)
	}
	gen := NewPriceSeriesGenerator(testingpkg.NewSequenceSource(values...))

	series := gen.Generate(2000, 11)

	assert.Equal(t, 2000, series[2].Price)
	assert.Equal(t, 1900, series[2].MarketAverage)
}

func TestPriceSeriesGenerator_NoiseBounds(t *testing.T) {
	low := NewPriceSeriesGenerator(testingpkg.ConstantSource(0)).Generate(2000, 11)
	high := NewPriceSeriesGenerator(testingpkg.ConstantSource(0.999999)).Generate(2000, 11)

	// Noise spans +/-0.04*basePrice = +/-80 around the noiseless price.
	assert.Equal(t, 1920, low[2].Price)
	assert.Equal(t, 2080, high[2].Price)
}

func TestPriceSeriesGenerator_MarketAverageBounds(t *testing.T) {
	gen := NewPriceSeriesGenerator(NewSeededSource(42))

	for run := 0; run < 50; run++ {
		for _, p := range gen.Generate(4400, run%12) {
			price := float64(p.Price)
			assert.GreaterOrEqual(t, float64(p.MarketAverage), price*0.95-0.5)
			assert.LessOrEqual(t, float64(p.MarketAverage), price*1.05+0.5)
		}
	}
}

func TestPriceSeriesGenerator_DeterministicUnderSeed(t *testing.T) {
	a := NewPriceSeriesGenerator(NewSeededSource(99)).Generate(1750, 3)
	b := NewPriceSeriesGenerator(NewSeededSource(99)).Generate(1750, 3)
	c := NewPriceSeriesGenerator(NewSeededSource(100)).Generate(1750, 3)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestPriceSeriesGenerator_ClampsReferenceMonth(t *testing.T) {
	gen := NewPriceSeriesGenerator(testingpkg.ConstantSource(0.5))

	assert.Equal(t, gen.Generate(2000, 0), gen.Generate(2000, -3))
	assert.Equal(t, gen.Generate(2000, 11), gen.Generate(2000, 40))
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 3, roundHalfUp(2.5))
	assert.Equal(t, 2, roundHalfUp(2.49))
	assert.Equal(t, -2, roundHalfUp(-2.5))
	assert.Equal(t, 1.3, RoundTo(1.25, 1))
	assert.Equal(t, -3.6, RoundTo(-3.6, 1))
}
