package format

import (
	"fmt"
	"strings"
	"time"

	"agave/internal/model"
)

// PriceReport formats a full price calculation into a chat message.
func PriceReport(calc *model.PriceCalculation, table *model.RangeTable, currency string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("💲 <b>AGAVE precios</b> | costo %s\n\n", FormatCurrency(calc.Cost, currency)))
	b.WriteString(fmt.Sprintf("Margen objetivo: %s (%s %s)\n", calc.TargetMargin, CategoryEmoji(calc.TargetCategory), calc.TargetCategory))
	b.WriteString(fmt.Sprintf("Precio recomendado: <b>%s</b>\n\n", FormatCurrency(calc.RecommendedPrice, currency)))

	b.WriteString(fmt.Sprintf("Mínimo:  %s\n", FormatCurrency(calc.MinimumPrice, currency)))
	b.WriteString(fmt.Sprintf("Óptimo:  %s\n", FormatCurrency(calc.OptimalPrice, currency)))
	b.WriteString(fmt.Sprintf("Premium: %s\n\n", FormatCurrency(calc.PremiumPrice, currency)))

	b.WriteString("📈 <b>Precio por categoría:</b>\n")
	for _, r := range table.Ranges() {
		price := calc.PricesByCategory[strings.ToLower(r.Name)]
		b.WriteString(fmt.Sprintf("  %s %s (≤%s): %s\n", CategoryEmoji(r.Name), r.Name, r.Max, FormatCurrency(price, currency)))
	}
	return b.String()
}

// ClassificationReport formats the band of a price/cost pair.
func ClassificationReport(price, cost float64, c *model.MarginClassification, currency string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s</b> | margen %s\n", CategoryEmoji(c.Category), c.Category, c.Margin))
	b.WriteString(fmt.Sprintf("Precio %s sobre costo %s\n", FormatCurrency(price, currency), FormatCurrency(cost, currency)))
	if c.Next != nil {
		b.WriteString(fmt.Sprintf("Siguiente: %s %s desde %s\n",
			CategoryEmoji(c.Next.Category), c.Next.Category, FormatCurrency(c.Next.RequiredPrice, currency)))
	} else {
		b.WriteString("Categoría máxima alcanzada ✅\n")
	}
	return b.String()
}

// SimulationReport formats one or more discount scenarios for the same price.
func SimulationReport(results []*model.SimulationResult, currency string) string {
	var b strings.Builder
	if len(results) == 0 {
		return "Sin escenarios de descuento"
	}
	first := results[0]
	b.WriteString(fmt.Sprintf("🏷️ <b>Simulación de descuentos</b> | precio %s, costo %s\n",
		FormatCurrency(first.OriginalPrice, currency), FormatCurrency(first.Cost, currency)))
	b.WriteString(fmt.Sprintf("Margen actual: %s\n\n", first.OriginalMargin))

	for _, r := range results {
		b.WriteString(fmt.Sprintf("-%s → %s | margen %s %s %s\n",
			r.Discount, FormatCurrency(r.DiscountedPrice, currency), r.ResultingMargin, CategoryEmoji(r.Category), r.Category))
		b.WriteString(fmt.Sprintf("   Impacto anual: %s\n", FormatCurrency(r.AnnualImpact, currency)))
		b.WriteString(fmt.Sprintf("   %s\n", r.Recommendation))
	}
	return b.String()
}

// RangesReport lists the bands of a table.
func RangesReport(table *model.RangeTable) string {
	var b strings.Builder
	b.WriteString("📐 <b>Rangos de margen</b>\n\n")
	for _, r := range table.Ranges() {
		b.WriteString(fmt.Sprintf("%s %s: %s – %s\n", CategoryEmoji(r.Name), r.Name, r.Min, r.Max))
	}
	return b.String()
}

// CatalogReport summarizes a repricing run.
func CatalogReport(reports []model.ProductReport, currency string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>AGAVE catálogo</b> | %s\n\n", time.Now().Format("2006-01-02")))
	if len(reports) == 0 {
		b.WriteString("Catálogo vacío\n")
		return b.String()
	}

	var below []string
	for _, r := range reports {
		cur := r.Product.Currency
		if cur == "" {
			cur = currency
		}
		line := fmt.Sprintf("• %s: recomendado %s", label(r.Product), FormatCurrency(r.Calculation.RecommendedPrice, cur))
		if r.Classification != nil {
			line += fmt.Sprintf(" | actual %s %s %s",
				FormatCurrency(r.Product.Price, cur), CategoryEmoji(r.Classification.Category), r.Classification.Margin)
		}
		b.WriteString(line + "\n")
		if r.BelowMinimum {
			below = append(below, label(r.Product))
		}
	}

	if len(below) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ Bajo el precio mínimo: %s\n", strings.Join(below, ", ")))
	}
	return b.String()
}

func label(p model.Product) string {
	if p.Name == "" {
		return p.SKU
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.SKU)
}
