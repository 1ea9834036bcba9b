package calculator

import (
	"fmt"
	"strings"

	"agave/internal/model"
)

// fallbackTargetIndex is the 5th band of a table, used as the target category
// when neither the target margin nor the optimal reference lands in the table.
const fallbackTargetIndex = 4

// PricesByCategory prices cost at the upper bound of every band, keyed by
// the lower-cased band name.
func PricesByCategory(cost float64, table *model.RangeTable) (map[string]float64, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: range table is nil", model.ErrInvalidArgument)
	}
	prices := make(map[string]float64, table.Len())
	for _, r := range table.Ranges() {
		p, err := PriceFromCostAndMargin(cost, r.Max)
		if err != nil {
			return nil, fmt.Errorf("price %q: %w", r.Name, err)
		}
		prices[strings.ToLower(r.Name)] = p
	}
	return prices, nil
}

// FullPriceCalculation builds the category ladder for cost and the four
// reference prices around target.
func FullPriceCalculation(cost float64, target model.Fraction, table *model.RangeTable, refs model.ReferenceMargins) (*model.PriceCalculation, error) {
	ladder, err := PricesByCategory(cost, table)
	if err != nil {
		return nil, err
	}

	recommended, err := PriceFromCostAndMargin(cost, target)
	if err != nil {
		return nil, fmt.Errorf("recommended price: %w", err)
	}

	minimum, err := PriceFromCostAndMargin(cost, refs.Minimum.Resolve(table))
	if err != nil {
		return nil, fmt.Errorf("minimum price: %w", err)
	}
	optimal, err := PriceFromCostAndMargin(cost, refs.Optimal.Resolve(table))
	if err != nil {
		return nil, fmt.Errorf("optimal price: %w", err)
	}
	premium, err := PriceFromCostAndMargin(cost, refs.Premium.Resolve(table))
	if err != nil {
		return nil, fmt.Errorf("premium price: %w", err)
	}

	return &model.PriceCalculation{
		Cost:             cost,
		MinimumPrice:     minimum,
		RecommendedPrice: recommended,
		OptimalPrice:     optimal,
		PremiumPrice:     premium,
		PricesByCategory: ladder,
		TargetMargin:     target,
		TargetCategory:   targetCategory(target, table, refs),
	}, nil
}

func targetCategory(target model.Fraction, table *model.RangeTable, refs model.ReferenceMargins) string {
	if i := table.Index(target); i >= 0 {
		return table.At(i).Name
	}
	if r, ok := table.ByName(refs.Optimal.Category); ok {
		return r.Name
	}
	if table.Len() > fallbackTargetIndex {
		return table.At(fallbackTargetIndex).Name
	}
	return table.Last().Name
}
