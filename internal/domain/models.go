// Package domain provides core domain models and types.
package domain

import (
	"strings"
	"time"
)

// MonthsPerYear is the fixed length of every price series.
const MonthsPerYear = 12

// MonthLabels holds the series labels in calendar order.
var MonthLabels = [MonthsPerYear]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// NowMonth is the recommendation month used when no future month exists.
const NowMonth = "Now"

// Crop is a catalog entry. BasePrice is in currency units per Unit.
type Crop struct {
	Name      string  `json:"name" yaml:"name"`
	Icon      string  `json:"icon" yaml:"icon"`
	Unit      string  `json:"unit" yaml:"unit"`
	BasePrice float64 `json:"base_price" yaml:"base_price"`
}

// Region is a selectable location.
type Region string

// Market is the full name of a trading venue, e.g. "APMC Azadpur".
type Market string

// Label returns the short display label: the first whitespace-delimited token.
func (m Market) Label() string {
	fields := strings.Fields(string(m))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// MonthlyPricePoint is one month of the synthetic series.
type MonthlyPricePoint struct {
	Month         string `json:"month"`
	Price         int    `json:"price"`
	Predicted     bool   `json:"predicted"`
	MarketAverage int    `json:"market_average"`
}

// MarketQuote is a per-market snapshot price.
type MarketQuote struct {
	Market string `json:"market"`
	Price  int    `json:"price"`
}

// BestSellingRecommendation identifies the best future month to sell.
// Price is nil when no predicted month exists.
type BestSellingRecommendation struct {
	Month  string `json:"month"`
	Price  *int   `json:"price,omitempty"`
	Reason string `json:"reason"`
}

// HasPrice reports whether a future month was found.
func (r BestSellingRecommendation) HasPrice() bool {
	return r.Price != nil
}

// TrendLabel classifies the period change.
type TrendLabel string

const (
	TrendBullish TrendLabel = "Bullish"
	TrendBearish TrendLabel = "Bearish"
	TrendStable  TrendLabel = "Stable"
)

// SeriesStats holds summary statistics over the series prices.
// MovingAverage[k] is the simple average of the MovingAveragePeriod months
// ending at month index k+MovingAveragePeriod-1.
type SeriesStats struct {
	High                int       `json:"high"`
	HighMonth           string    `json:"high_month"`
	Low                 int       `json:"low"`
	LowMonth            string    `json:"low_month"`
	Mean                float64   `json:"mean"`
	StdDev              float64   `json:"std_dev"`
	MovingAveragePeriod int       `json:"moving_average_period"`
	MovingAverage       []float64 `json:"moving_average"`
}

// DashboardSnapshot is the complete output for one (crop, region) selection.
// PriceChangePercent is sampled independently of Series and may disagree with it.
type DashboardSnapshot struct {
	ID                 string                    `json:"id"`
	Generation         uint64                    `json:"generation"`
	Crop               Crop                      `json:"crop"`
	Region             Region                    `json:"region"`
	ReferenceMonth     int                       `json:"reference_month"`
	Series             []MonthlyPricePoint       `json:"series"`
	Quotes             []MarketQuote             `json:"quotes"`
	BestTime           BestSellingRecommendation `json:"best_time"`
	CurrentPrice       int                       `json:"current_price"`
	PriceChangePercent float64                   `json:"price_change_percent"`
	Trend              TrendLabel                `json:"trend"`
	Advice             string                    `json:"advice"`
	MarketsTracked     int                       `json:"markets_tracked"`
	Stats              SeriesStats               `json:"stats"`
	GeneratedAt        time.Time                 `json:"generated_at"`
}

// RefreshState is the orchestrator lifecycle: idle -> computing -> ready.
type RefreshState string

const (
	StateIdle      RefreshState = "idle"
	StateComputing RefreshState = "computing"
	StateReady     RefreshState = "ready"
)
