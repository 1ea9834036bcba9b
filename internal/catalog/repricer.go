package catalog

import (
	"fmt"

	"go.uber.org/zap"

	"agave/internal/calculator"
	"agave/internal/classifier"
	"agave/internal/format"
	"agave/internal/model"
)

// Repricer runs the pricing engine over a list of products.
type Repricer struct {
	Table         *model.RangeTable
	Refs          model.ReferenceMargins
	DefaultTarget model.Fraction
	Logger        *zap.Logger
}

// NewRepricer creates a Repricer. A nil logger is replaced by a no-op one.
func NewRepricer(table *model.RangeTable, refs model.ReferenceMargins, target model.Fraction, logger *zap.Logger) *Repricer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repricer{Table: table, Refs: refs, DefaultTarget: target, Logger: logger}
}

// Reprice computes one report per product. Products the engine rejects are
// logged and skipped so one bad row does not stop the whole catalog.
func (r *Repricer) Reprice(products []model.Product) []model.ProductReport {
	reports := make([]model.ProductReport, 0, len(products))
	for _, p := range products {
		rep, err := r.RepriceOne(p)
		if err != nil {
			r.Logger.Warn("reprice failed", zap.String("sku", p.SKU), zap.Error(err))
			continue
		}
		r.Logger.Debug("repriced",
			zap.String("sku", p.SKU),
			zap.Float64("cost", p.Cost),
			zap.Float64("recommended", rep.Calculation.RecommendedPrice),
			zap.String("category", rep.Calculation.TargetCategory))
		reports = append(reports, *rep)
	}
	return reports
}

// RepriceOne computes the report for a single product.
func (r *Repricer) RepriceOne(p model.Product) (*model.ProductReport, error) {
	target := r.DefaultTarget
	if p.TargetMargin != nil {
		target = *p.TargetMargin
	}

	calc, err := calculator.FullPriceCalculation(p.Cost, target, r.Table, r.Refs)
	if err != nil {
		return nil, fmt.Errorf("price %s: %w", p.SKU, err)
	}
	rep := &model.ProductReport{Product: p, Calculation: calc}

	if p.Price > 0 {
		class, err := classifier.ClassifyPrice(p.Price, p.Cost, r.Table)
		if err != nil {
			return nil, fmt.Errorf("classify %s: %w", p.SKU, err)
		}
		cmp := format.ComparePrices(p.Price, calc.RecommendedPrice)
		rep.Classification = class
		rep.Comparison = &cmp
		rep.BelowMinimum = p.Price < calc.MinimumPrice
	}
	return rep, nil
}

// Summary counts current prices per category and lists the SKUs priced
// below their minimum reference price.
type Summary struct {
	Products     int
	Priced       int
	ByCategory   map[string]int
	BelowMinimum []string
}

// Summarize builds a Summary from repricing reports.
func Summarize(reports []model.ProductReport) Summary {
	s := Summary{Products: len(reports), ByCategory: make(map[string]int)}
	for _, rep := range reports {
		if rep.Classification == nil {
			continue
		}
		s.Priced++
		s.ByCategory[rep.Classification.Category]++
		if rep.BelowMinimum {
			s.BelowMinimum = append(s.BelowMinimum, rep.Product.SKU)
		}
	}
	return s
}
