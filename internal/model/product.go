package model

// Product is one catalog row. Price is the current selling price, zero when
// the product has not been priced yet. TargetMargin overrides the configured
// default target when set.
type Product struct {
	SKU          string    `json:"sku" yaml:"sku"`
	Name         string    `json:"name" yaml:"name"`
	Cost         float64   `json:"cost" yaml:"cost"`
	Price        float64   `json:"price,omitempty" yaml:"price,omitempty"`
	TargetMargin *Fraction `json:"target_margin,omitempty" yaml:"target_margin,omitempty"`
	Currency     string    `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// ProductReport is the repricing outcome for one product.
type ProductReport struct {
	Product        Product               `json:"producto"`
	Calculation    *PriceCalculation     `json:"calculo"`
	Classification *MarginClassification `json:"clasificacion,omitempty"` // nil when the product has no current price
	Comparison     *PriceComparison      `json:"comparacion,omitempty"`   // current price against the recommended price
	BelowMinimum   bool                  `json:"bajoMinimo"`
}
