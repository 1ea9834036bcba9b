package format

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agave/internal/calculator"
	"agave/internal/classifier"
	"agave/internal/model"
	"agave/internal/simulator"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{9.73, "PEN", "S/ 9.73"},
		{1234.5, "usd", "$ 1,234.50"},
		{1234567.891, "EUR", "€ 1,234,567.89"},
		{-1176, "USD", "-$ 1,176.00"},
		{9.73, "XYZ", "$ 9.73"},
		{math.Inf(1), "PEN", "S/ ∞"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.amount, tt.code))
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "27.0%", FormatPercent(0.27, 1))
	assert.Equal(t, "19.68%", FormatPercent(19.68, 2))
	// Values below 1 are always read as fractions.
	assert.Equal(t, "50%", FormatPercent(0.5, 0))
}

func TestCategoryEmoji(t *testing.T) {
	assert.Equal(t, "🚨", CategoryEmoji("Crítico"))
	assert.Equal(t, "💪", CategoryEmoji("MUY BUENO"))
	assert.Equal(t, "🏆", CategoryEmoji(" excelente "))
	assert.Equal(t, FallbackEmoji, CategoryEmoji("Legendario"))
	assert.Equal(t, FallbackEmoji, CategoryEmoji(""))
}

func TestComparePrices(t *testing.T) {
	c := ComparePrices(9.73, 10.44)
	assert.Equal(t, 0.71, c.Difference)
	assert.Equal(t, model.Percent(7.3), c.Percent)
	assert.True(t, c.Improved)

	c = ComparePrices(10, 9)
	assert.Equal(t, -1.0, c.Difference)
	assert.Equal(t, model.Percent(-10), c.Percent)
	assert.False(t, c.Improved)

	c = ComparePrices(0, 5)
	assert.Zero(t, c.Percent)
	assert.True(t, c.Improved)
}

func TestPriceReport(t *testing.T) {
	table := model.DefaultRangeTable()
	calc, err := calculator.FullPriceCalculation(7.10, 0.27, table, model.DefaultReferenceMargins())
	require.NoError(t, err)

	report := PriceReport(calc, table, "PEN")
	assert.Contains(t, report, "Precio recomendado: <b>S/ 9.73</b>")
	assert.Contains(t, report, "Óptimo:  S/ 10.44")
	assert.Contains(t, report, "Excelente (≤100.0%): S/ ∞")
	assert.Contains(t, report, "👍 Bueno")
}

func TestClassificationReport(t *testing.T) {
	table := model.DefaultRangeTable()

	c, err := classifier.ClassifyPrice(9.82, 7.10, table)
	require.NoError(t, err)
	report := ClassificationReport(9.82, 7.10, c, "USD")
	assert.Contains(t, report, "<b>Bueno</b> | margen 27.7%")
	assert.Contains(t, report, "Siguiente: 💪 Muy Bueno desde $ 10.44")

	c, err = classifier.ClassifyPrice(100, 50, table)
	require.NoError(t, err)
	assert.Contains(t, ClassificationReport(100, 50, c, "USD"), "Categoría máxima")
}

func TestSimulationReport(t *testing.T) {
	results, err := simulator.SimulateDiscounts(9.82, 7.10, []model.Percent{10}, 100, model.DefaultRangeTable())
	require.NoError(t, err)

	report := SimulationReport(results, "PEN")
	assert.Contains(t, report, "-10.0% → S/ 8.84 | margen 19.7% 📉 Bajo")
	assert.Contains(t, report, "Impacto anual: -S/ 1,176.00")
	assert.Contains(t, report, "ACCEPTABLE only for high volume")

	assert.Equal(t, "Sin escenarios de descuento", SimulationReport(nil, "PEN"))
}

func TestRangesReport(t *testing.T) {
	report := RangesReport(model.DefaultRangeTable())
	assert.Contains(t, report, "🚨 Critico: 0.0% – 10.0%")
	assert.Contains(t, report, "🏆 Excelente: 45.0% – 100.0%")
	assert.Equal(t, 10, strings.Count(report, "\n"))
}

func TestCatalogReport(t *testing.T) {
	table := model.DefaultRangeTable()
	calc, err := calculator.FullPriceCalculation(7.10, 0.27, table, model.DefaultReferenceMargins())
	require.NoError(t, err)
	class, err := classifier.ClassifyPrice(8, 7.10, table)
	require.NoError(t, err)

	reports := []model.ProductReport{
		{Product: model.Product{SKU: "A1", Name: "Jarabe", Cost: 7.10, Price: 8}, Calculation: calc, Classification: class, BelowMinimum: true},
		{Product: model.Product{SKU: "B2", Cost: 7.10, Currency: "USD"}, Calculation: calc},
	}
	report := CatalogReport(reports, "PEN")
	assert.Contains(t, report, "• Jarabe (A1): recomendado S/ 9.73 | actual S/ 8.00")
	assert.Contains(t, report, "• B2: recomendado $ 9.73\n")
	assert.Contains(t, report, "Bajo el precio mínimo: Jarabe (A1)")

	assert.Contains(t, CatalogReport(nil, "PEN"), "Catálogo vacío")
}
