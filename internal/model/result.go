package model

import (
	"encoding/json"
	"math"
)

// PriceCalculation is the full price ladder for one cost.
type PriceCalculation struct {
	Cost             float64            `json:"costo"`
	MinimumPrice     float64            `json:"precioMinimo"`
	RecommendedPrice float64            `json:"precioRecomendado"`
	OptimalPrice     float64            `json:"precioOptimo"`
	PremiumPrice     float64            `json:"precioPremium"`
	PricesByCategory map[string]float64 `json:"preciosByCategory"`
	TargetMargin     Fraction           `json:"margenObjetivo"`
	TargetCategory   string             `json:"categoriaObjetivo"`
}

// MarshalJSON writes unbounded prices (margin >= 1) as null.
func (p PriceCalculation) MarshalJSON() ([]byte, error) {
	ladder := make(map[string]*float64, len(p.PricesByCategory))
	for k, v := range p.PricesByCategory {
		ladder[k] = finite(v)
	}
	return json.Marshal(struct {
		Cost             float64             `json:"costo"`
		MinimumPrice     *float64            `json:"precioMinimo"`
		RecommendedPrice *float64            `json:"precioRecomendado"`
		OptimalPrice     *float64            `json:"precioOptimo"`
		PremiumPrice     *float64            `json:"precioPremium"`
		PricesByCategory map[string]*float64 `json:"preciosByCategory"`
		TargetMargin     Fraction            `json:"margenObjetivo"`
		TargetCategory   string              `json:"categoriaObjetivo"`
	}{
		Cost:             p.Cost,
		MinimumPrice:     finite(p.MinimumPrice),
		RecommendedPrice: finite(p.RecommendedPrice),
		OptimalPrice:     finite(p.OptimalPrice),
		PremiumPrice:     finite(p.PremiumPrice),
		PricesByCategory: ladder,
		TargetMargin:     p.TargetMargin,
		TargetCategory:   p.TargetCategory,
	})
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// NextCategory names the next-higher band and the price that reaches its Min.
type NextCategory struct {
	Category      string  `json:"categoria"`
	RequiredPrice float64 `json:"precioNecesario"`
}

// MarginClassification places a margin in a band of a RangeTable.
type MarginClassification struct {
	Margin   Fraction      `json:"margen"`
	Category string        `json:"categoria"`
	Color    string        `json:"color"`
	Next     *NextCategory `json:"siguiente,omitempty"`
}

// Recommendation is the verdict of a discount simulation.
type Recommendation int

const (
	NotRecommended Recommendation = iota
	Caution
	HighVolumeOnly
	Approved
	Evaluate
)

func (r Recommendation) String() string {
	switch r {
	case NotRecommended:
		return "NOT RECOMMENDED – critical margin"
	case Caution:
		return "CAUTION – very low margin"
	case HighVolumeOnly:
		return "ACCEPTABLE only for high volume"
	case Approved:
		return "APPROVED – healthy margin"
	case Evaluate:
		return "EVALUATE – significant discount"
	default:
		return "UNKNOWN"
	}
}

// SimulationResult describes one discount scenario. ResultingMargin is the only
// margin in the engine reported as a Percent.
type SimulationResult struct {
	OriginalPrice   float64        `json:"precioOriginal"`
	DiscountedPrice float64        `json:"precioConDescuento"`
	Discount        Percent        `json:"descuento"`
	Cost            float64        `json:"costo"`
	OriginalMargin  Fraction       `json:"margenOriginal"`
	ResultingMargin Percent        `json:"margenResultante"`
	Category        string         `json:"categoria"`
	Color           string         `json:"color"`
	AnnualImpact    float64        `json:"impactoAnual"`
	Recommendation  string         `json:"recomendacion"`
	Level           Recommendation `json:"nivel"`
}

// PriceComparison is the delta between two prices.
type PriceComparison struct {
	Difference float64 `json:"diferencia"`
	Percent    Percent `json:"porcentaje"`
	Improved   bool    `json:"mejora"`
}
