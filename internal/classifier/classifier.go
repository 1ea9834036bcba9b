package classifier

import (
	"fmt"
	"math"

	"agave/internal/calculator"
	"agave/internal/model"
)

// ClassifyMargin maps margin onto a band of table. Margins above the table
// saturate to the top band, margins below it to the bottom band.
//
// Next.RequiredPrice is left at 0: it needs a cost, see ClassifyPrice.
func ClassifyMargin(margin model.Fraction, table *model.RangeTable) (*model.MarginClassification, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: range table is nil", model.ErrInvalidArgument)
	}
	if math.IsNaN(float64(margin)) {
		return nil, fmt.Errorf("%w: margin is NaN", model.ErrInvalidArgument)
	}

	idx := bandIndex(margin, table)
	band := table.At(idx)
	c := &model.MarginClassification{
		Margin:   margin,
		Category: band.Name,
		Color:    band.Color,
	}
	if idx < table.Len()-1 {
		c.Next = &model.NextCategory{Category: table.At(idx + 1).Name}
	}
	return c, nil
}

// ClassifyPrice classifies the margin of price over cost and fills in the
// price at which the next band's lower bound is reached.
func ClassifyPrice(price, cost float64, table *model.RangeTable) (*model.MarginClassification, error) {
	margin, err := calculator.MarginFromPriceAndCost(price, cost)
	if err != nil {
		return nil, err
	}
	c, err := ClassifyMargin(margin, table)
	if err != nil {
		return nil, err
	}
	if c.Next != nil {
		next, _ := table.ByName(c.Next.Category)
		required, err := calculator.PriceFromCostAndMargin(cost, next.Min)
		if err != nil {
			return nil, fmt.Errorf("next category price: %w", err)
		}
		c.Next.RequiredPrice = required
	}
	return c, nil
}

// Categories lists band names in ascending margin order.
func Categories(table *model.RangeTable) []string {
	names := make([]string, 0, table.Len())
	for _, r := range table.Ranges() {
		names = append(names, r.Name)
	}
	return names
}

func bandIndex(margin model.Fraction, table *model.RangeTable) int {
	if i := table.Index(margin); i >= 0 {
		return i
	}
	if margin >= table.Last().Max {
		return table.Len() - 1
	}
	return 0
}
