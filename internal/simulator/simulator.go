package simulator

import (
	"fmt"
	"math"
	"sort"

	"agave/internal/calculator"
	"agave/internal/classifier"
	"agave/internal/model"
)

// DefaultDiscounts is the ladder used when the caller does not supply one.
var DefaultDiscounts = []model.Percent{5, 10, 15, 20, 25}

// Recommendation thresholds on the resulting margin.
const (
	criticalMargin   model.Fraction = 0.10
	veryLowMargin    model.Fraction = 0.15
	highVolumeMargin model.Fraction = 0.20
	// healthyRetention is the share of the original margin a discount may keep
	// and still be approved.
	healthyRetention = 0.9
)

// SimulateDiscount applies discount to originalPrice and reports the
// resulting margin, band, yearly profit delta and a recommendation.
func SimulateDiscount(originalPrice, cost float64, discount model.Percent, monthlyUnits int, table *model.RangeTable) (*model.SimulationResult, error) {
	if err := checkDiscount(discount); err != nil {
		return nil, err
	}
	if monthlyUnits < 0 {
		return nil, fmt.Errorf("%w: monthly units must not be negative, got %d", model.ErrInvalidArgument, monthlyUnits)
	}
	if math.IsNaN(originalPrice) || math.IsInf(originalPrice, 0) || originalPrice < 0 {
		return nil, fmt.Errorf("%w: original price must be a finite non-negative number, got %v", model.ErrInvalidArgument, originalPrice)
	}

	discounted := calculator.RoundCents(originalPrice * (1 - float64(discount)/100))

	originalMargin, err := calculator.MarginFromPriceAndCost(originalPrice, cost)
	if err != nil {
		return nil, fmt.Errorf("original margin: %w", err)
	}
	resultingMargin, err := calculator.MarginFromPriceAndCost(discounted, cost)
	if err != nil {
		return nil, fmt.Errorf("resulting margin: %w", err)
	}

	class, err := classifier.ClassifyMargin(resultingMargin, table)
	if err != nil {
		return nil, err
	}

	yearlyUnits := float64(monthlyUnits) * 12
	impact := calculator.RoundWhole((discounted-cost)*yearlyUnits - (originalPrice-cost)*yearlyUnits)

	level := recommend(originalMargin, resultingMargin)
	return &model.SimulationResult{
		OriginalPrice:   originalPrice,
		DiscountedPrice: discounted,
		Discount:        discount,
		Cost:            cost,
		OriginalMargin:  originalMargin,
		ResultingMargin: model.Percent(calculator.RoundCents(float64(resultingMargin) * 100)),
		Category:        class.Category,
		Color:           class.Color,
		AnnualImpact:    impact,
		Recommendation:  level.String(),
		Level:           level,
	}, nil
}

// SimulateDiscounts runs SimulateDiscount for every entry of discounts.
func SimulateDiscounts(originalPrice, cost float64, discounts []model.Percent, monthlyUnits int, table *model.RangeTable) ([]*model.SimulationResult, error) {
	if len(discounts) == 0 {
		discounts = DefaultDiscounts
	}
	results := make([]*model.SimulationResult, 0, len(discounts))
	for _, d := range discounts {
		r, err := SimulateDiscount(originalPrice, cost, d, monthlyUnits, table)
		if err != nil {
			return nil, fmt.Errorf("discount %.2f%%: %w", float64(d), err)
		}
		results = append(results, r)
	}
	return results, nil
}

// MaxDiscount is the largest discount on price, in hundredths of a percent,
// whose discounted price still has a margin at or above minMargin. It is 0
// when price is already below that margin.
func MaxDiscount(price, cost float64, minMargin model.Fraction) (model.Percent, error) {
	floor, err := calculator.PriceFromCostAndMargin(cost, minMargin)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: price must be a finite number, got %v", model.ErrInvalidArgument, price)
	}
	if price <= 0 || math.IsInf(floor, 1) {
		return 0, nil
	}
	if minMargin < 0 {
		minMargin = 0
	}

	keeps := func(hundredths int) bool {
		discounted := calculator.RoundCents(price * (1 - float64(hundredthsToPercent(hundredths))/100))
		if discounted <= 0 {
			return false
		}
		m, _ := calculator.MarginFromPriceAndCost(discounted, cost)
		return m >= minMargin
	}
	// The margin never grows with the discount, so the discounts that keep
	// it form a prefix of [0, 100%].
	n := sort.Search(maxHundredths+1, func(i int) bool { return !keeps(i) })
	if n == 0 {
		return 0, nil
	}
	return hundredthsToPercent(n - 1), nil
}

const maxHundredths = 100 * 100

func hundredthsToPercent(h int) model.Percent {
	return model.Percent(float64(h) / 100)
}

func recommend(original, resulting model.Fraction) model.Recommendation {
	switch {
	case resulting < criticalMargin:
		return model.NotRecommended
	case resulting < veryLowMargin:
		return model.Caution
	case resulting < highVolumeMargin:
		return model.HighVolumeOnly
	case float64(resulting) >= float64(original)*healthyRetention:
		return model.Approved
	default:
		return model.Evaluate
	}
}

func checkDiscount(d model.Percent) error {
	if math.IsNaN(float64(d)) || d < 0 || d > 100 {
		return fmt.Errorf("%w: discount must be within [0, 100], got %v", model.ErrInvalidArgument, float64(d))
	}
	return nil
}
