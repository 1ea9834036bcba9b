package recorder

import "agave/internal/model"

// Source tags where a recorded result came from.
const (
	SourceCLI     = "cli"
	SourceChat    = "chat"
	SourceCatalog = "catalog"
)

// CalculationEvent holds one full price calculation.
type CalculationEvent struct {
	Source      string
	SKU         string // empty outside catalog runs
	Calculation *model.PriceCalculation
}

// ClassificationEvent holds one price/cost classification.
type ClassificationEvent struct {
	Source         string
	SKU            string
	Price          float64
	Cost           float64
	Classification *model.MarginClassification
}

// SimulationEvent holds one discount scenario.
type SimulationEvent struct {
	Source       string
	MonthlyUnits int
	Result       *model.SimulationResult
}

// CatalogRun holds a whole repricing run.
type CatalogRun struct {
	RunID        string
	SourceName   string
	Products     int
	Priced       int
	BelowMinimum int
	Reports      []model.ProductReport
}

// Recorder persists engine results for later analysis.
type Recorder interface {
	RecordCalculation(evt *CalculationEvent) error
	RecordClassification(evt *ClassificationEvent) error
	RecordSimulation(evt *SimulationEvent) error
	RecordCatalogRun(run *CatalogRun) error
	Close() error
}
