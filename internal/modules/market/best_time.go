package market

import "github.com/aristath/cropwatch/internal/domain"

const stableReason = "Prices are stable currently"

// SelectBestTime picks the predicted month with the highest price.
// On ties the earliest month wins. With no predicted months it returns the
// "Now" recommendation without a price.
func SelectBestTime(series []domain.MonthlyPricePoint) domain.BestSellingRecommendation {
	var best *domain.MonthlyPricePoint
	for i := range series {
		p := &series[i]
		if !p.Predicted {
			continue
		}
		if best == nil || p.Price > best.Price {
			best = p
		}
	}

	if best == nil {
		return domain.BestSellingRecommendation{
			Month:  domain.NowMonth,
			Reason: stableReason,
		}
	}

	price := best.Price
	return domain.BestSellingRecommendation{
		Month:  best.Month,
		Price:  &price,
		Reason: "Peak demand expected in " + best.Month,
	}
}
