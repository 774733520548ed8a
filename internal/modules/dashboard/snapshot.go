package dashboard

import (
	"fmt"
	"strconv"

	"github.com/aristath/cropwatch/internal/domain"
)

// Trend thresholds in percent
const (
	bullishThreshold = 2.0
	bearishThreshold = -2.0
)

// TrendFor classifies a period change percentage.
func TrendFor(changePercent float64) domain.TrendLabel {
	switch {
	case changePercent >= bullishThreshold:
		return domain.TrendBullish
	case changePercent <= bearishThreshold:
		return domain.TrendBearish
	default:
		return domain.TrendStable
	}
}

// Advice renders the selling recommendation shown under the charts.
func Advice(trend domain.TrendLabel, best domain.BestSellingRecommendation) string {
	switch trend {
	case domain.TrendBullish:
		return fmt.Sprintf("Prices are rising. Hold stock if possible — best price expected in %s.", best.Month)
	case domain.TrendBearish:
		return "Prices are falling. Consider selling soon before further decline."
	}

	if !best.HasPrice() {
		return "Market is stable. Sell now at current market prices."
	}
	return fmt.Sprintf("Market is stable. Sell in %s for maximum returns at ₹%s.", best.Month, FormatThousands(*best.Price))
}

// FormatThousands groups digits in threes: 12345 -> "12,345".
func FormatThousands(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	out := make([]byte, 0, len(s)+len(s)/3)
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return sign + string(out)
}
