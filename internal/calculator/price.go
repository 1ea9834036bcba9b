package calculator

import (
	"fmt"
	"math"

	"agave/internal/model"
)

// PriceFromCostAndMargin returns cost / (1 - margin) rounded to cents.
// A margin >= 1 has no finite price and returns +Inf. A negative margin is
// treated as break-even (margin 0).
func PriceFromCostAndMargin(cost float64, margin model.Fraction) (float64, error) {
	if err := checkAmount("cost", cost); err != nil {
		return 0, err
	}
	if err := checkFinite("margin", float64(margin)); err != nil {
		return 0, err
	}
	if margin >= 1 {
		return math.Inf(1), nil
	}
	if margin < 0 {
		margin = 0
	}
	return RoundCents(cost / (1 - float64(margin))), nil
}

// MarginFromPriceAndCost returns (price - cost) / price rounded to 4 decimals.
// A non-positive price yields 0.
func MarginFromPriceAndCost(price, cost float64) (model.Fraction, error) {
	if err := checkFinite("price", price); err != nil {
		return 0, err
	}
	if err := checkAmount("cost", cost); err != nil {
		return 0, err
	}
	if price <= 0 {
		return 0, nil
	}
	return model.Fraction(RoundMargin((price - cost) / price)), nil
}

// CostFromPriceAndMargin returns price * (1 - margin) rounded to cents.
// A margin >= 1 leaves no room for cost and returns 0.
func CostFromPriceAndMargin(price float64, margin model.Fraction) (float64, error) {
	if err := checkAmount("price", price); err != nil {
		return 0, err
	}
	if err := checkFinite("margin", float64(margin)); err != nil {
		return 0, err
	}
	if margin >= 1 {
		return 0, nil
	}
	return RoundCents(price * (1 - float64(margin))), nil
}

func checkFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number, got %v", model.ErrInvalidArgument, name, v)
	}
	return nil
}

func checkAmount(name string, v float64) error {
	if err := checkFinite(name, v); err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %.2f", model.ErrInvalidArgument, name, v)
	}
	return nil
}
