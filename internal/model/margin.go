package model

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidArgument is returned for NaN, infinite or out-of-domain inputs.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidRanges is returned when a margin range table does not tile [0, 1].
	ErrInvalidRanges = errors.New("invalid margin ranges")
)

// Fraction is a margin expressed as a share of price (0.27 = 27%).
type Fraction float64

// Percent is a quantity already multiplied by 100 (27 = 27%).
type Percent float64

// Percent converts a fraction to its percentage value.
func (f Fraction) Percent() Percent { return Percent(float64(f) * 100) }

// String renders the fraction as a percentage with one decimal.
func (f Fraction) String() string { return f.Percent().String() }

// Fraction converts a percentage back to a fraction.
func (p Percent) Fraction() Fraction { return Fraction(float64(p) / 100) }

func (p Percent) String() string {
	return strconv.FormatFloat(float64(p), 'f', 1, 64) + "%"
}

// MarginRange is one named margin band. Min is inclusive, Max exclusive,
// except for the highest band of a table which is closed at Max.
type MarginRange struct {
	Name  string   `json:"nombre" yaml:"name"`
	Min   Fraction `json:"min" yaml:"min"`
	Max   Fraction `json:"max" yaml:"max"`
	Color string   `json:"color" yaml:"color"`
}

// ReferenceMargin anchors a named reference price to the upper bound of a
// category, or to Fallback when the table has no such category.
type ReferenceMargin struct {
	Category string   `json:"categoria" yaml:"category"`
	Fallback Fraction `json:"fallback" yaml:"fallback"`
}

// ReferenceMargins holds the three reference prices of a full calculation.
type ReferenceMargins struct {
	Minimum ReferenceMargin `json:"minimo" yaml:"minimum"`
	Optimal ReferenceMargin `json:"optimo" yaml:"optimal"`
	Premium ReferenceMargin `json:"premium" yaml:"premium"`
}

// DefaultReferenceMargins matches the default range table.
func DefaultReferenceMargins() ReferenceMargins {
	return ReferenceMargins{
		Minimum: ReferenceMargin{Category: "Aceptable", Fallback: 0.20},
		Optimal: ReferenceMargin{Category: "Bueno", Fallback: 0.27},
		Premium: ReferenceMargin{Category: "Muy Bueno", Fallback: 0.32},
	}
}

// Resolve returns the margin this reference points at within t.
func (r ReferenceMargin) Resolve(t *RangeTable) Fraction {
	if t != nil {
		if rng, ok := t.ByName(r.Category); ok {
			return rng.Max
		}
	}
	return r.Fallback
}
