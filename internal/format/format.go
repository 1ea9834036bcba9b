package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"agave/internal/calculator"
	"agave/internal/model"
)

// FallbackEmoji is shown for categories without a dedicated glyph.
const FallbackEmoji = "📊"

var currencySymbols = map[string]string{
	"USD": "$",
	"PEN": "S/",
	"EUR": "€",
	"MXN": "$",
	"COP": "$",
	"CLP": "$",
	"ARS": "$",
}

var categoryEmojis = map[string]string{
	"critico":       "🚨",
	"muy bajo":      "⚠️",
	"bajo":          "📉",
	"aceptable":     "👌",
	"bueno":         "👍",
	"muy bueno":     "💪",
	"sobresaliente": "⭐",
	"excelente":     "🏆",
}

var accentFolder = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u")

// CurrencySymbol returns the symbol for an ISO currency code, "$" when unknown.
func CurrencySymbol(code string) string {
	if s, ok := currencySymbols[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return s
	}
	return "$"
}

// FormatCurrency renders amount with thousands separators and two decimals.
func FormatCurrency(amount float64, code string) string {
	symbol := CurrencySymbol(code)
	switch {
	case math.IsInf(amount, 1):
		return symbol + " ∞"
	case math.IsNaN(amount):
		return symbol + " -"
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + symbol + " " + humanize.FormatFloat("#,###.##", calculator.RoundCents(amount))
}

// FormatPercent guesses the unit of value: anything below 1 is taken as a
// fraction and scaled by 100, anything else as an existing percentage.
// A literal 0.5% therefore renders as 50%; prefer Fraction.String or
// Percent.String when the unit is known.
func FormatPercent(value float64, decimals int) string {
	if value < 1 {
		value *= 100
	}
	return strconv.FormatFloat(value, 'f', decimals, 64) + "%"
}

// CategoryEmoji returns the glyph for a category name, ignoring case and accents.
func CategoryEmoji(category string) string {
	key := accentFolder.Replace(strings.ToLower(strings.TrimSpace(category)))
	if e, ok := categoryEmojis[key]; ok {
		return e
	}
	return FallbackEmoji
}

// ComparePrices reports how newPrice moved relative to oldPrice.
func ComparePrices(oldPrice, newPrice float64) model.PriceComparison {
	diff := newPrice - oldPrice
	var pct float64
	if oldPrice != 0 {
		pct = calculator.RoundCents(diff / oldPrice * 100)
	}
	return model.PriceComparison{
		Difference: calculator.RoundCents(diff),
		Percent:    model.Percent(pct),
		Improved:   newPrice > oldPrice,
	}
}
