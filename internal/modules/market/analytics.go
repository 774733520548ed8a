package market

import (
	"math"

	"github.com/aristath/cropwatch/internal/domain"
	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultMovingAveragePeriod is the window of the moving-average overlay in months
const DefaultMovingAveragePeriod = 3

// Summarize computes high/low, mean, sample standard deviation and a simple
// moving average of the series prices. A period outside [1, len(series)]
// falls back to DefaultMovingAveragePeriod.
func Summarize(series []domain.MonthlyPricePoint, period int) domain.SeriesStats {
	if len(series) == 0 {
		return domain.SeriesStats{}
	}

	prices := make([]float64, len(series))
	for i, p := range series {
		prices[i] = float64(p.Price)
	}

	if period < 1 || period > len(prices) {
		period = DefaultMovingAveragePeriod
	}
	if period > len(prices) {
		period = len(prices)
	}

	hi := floats.MaxIdx(prices)
	lo := floats.MinIdx(prices)

	stats := domain.SeriesStats{
		High:                series[hi].Price,
		HighMonth:           series[hi].Month,
		Low:                 series[lo].Price,
		LowMonth:            series[lo].Month,
		Mean:                RoundTo(stat.Mean(prices, nil), 2),
		MovingAveragePeriod: period,
		MovingAverage:       movingAverage(prices, period),
	}
	if len(prices) > 1 {
		stats.StdDev = RoundTo(stat.StdDev(prices, nil), 2)
	}

	return stats
}

// movingAverage returns the SMA values for every complete window.
func movingAverage(prices []float64, period int) []float64 {
	if period == 1 {
		out := make([]float64, len(prices))
		copy(out, prices)
		return out
	}

	sma := talib.Sma(prices, period)
	out := make([]float64, 0, len(prices)-period+1)
	for i := period - 1; i < len(sma); i++ {
		v := sma[i]
		if math.IsNaN(v) {
			continue
		}
		out = append(out, RoundTo(v, 2))
	}
	return out
}
