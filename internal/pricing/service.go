package pricing

import (
	"fmt"

	"go.uber.org/zap"

	"agave/internal/calculator"
	"agave/internal/classifier"
	"agave/internal/format"
	"agave/internal/model"
	"agave/internal/recorder"
	"agave/internal/simulator"
)

// Settings are the caller-level defaults applied to every request.
type Settings struct {
	Table        *model.RangeTable
	Refs         model.ReferenceMargins
	Target       model.Fraction
	Currency     string
	MonthlyUnits int
	Discounts    []model.Percent
}

// Service runs engine operations, records their results and renders them
// as reports. It is shared by the CLI and the chat bot.
type Service struct {
	Settings Settings
	Recorder recorder.Recorder
	Logger   *zap.Logger
	Source   string // recorder source tag
}

// NewService creates a Service. Nil recorder and logger become no-ops.
func NewService(settings Settings, rec recorder.Recorder, logger *zap.Logger, source string) *Service {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.Table == nil {
		settings.Table = model.DefaultRangeTable()
	}
	if settings.Refs == (model.ReferenceMargins{}) {
		settings.Refs = model.DefaultReferenceMargins()
	}
	return &Service{Settings: settings, Recorder: rec, Logger: logger, Source: source}
}

// Price computes the full price ladder for cost. A nil target uses the
// configured default.
func (s *Service) Price(cost float64, target *model.Fraction) (*model.PriceCalculation, string, error) {
	t := s.Settings.Target
	if target != nil {
		t = *target
	}
	calc, err := calculator.FullPriceCalculation(cost, t, s.Settings.Table, s.Settings.Refs)
	if err != nil {
		return nil, "", err
	}
	s.Logger.Info("price calculated",
		zap.Float64("cost", cost),
		zap.Float64("target_margin", float64(t)),
		zap.Float64("recommended", calc.RecommendedPrice),
		zap.String("category", calc.TargetCategory))

	if err := s.Recorder.RecordCalculation(&recorder.CalculationEvent{Source: s.Source, Calculation: calc}); err != nil {
		s.Logger.Error("record calculation", zap.Error(err))
	}
	return calc, format.PriceReport(calc, s.Settings.Table, s.Settings.Currency), nil
}

// Classify places price over cost in a margin band.
func (s *Service) Classify(price, cost float64) (*model.MarginClassification, string, error) {
	c, err := classifier.ClassifyPrice(price, cost, s.Settings.Table)
	if err != nil {
		return nil, "", err
	}
	s.Logger.Info("price classified",
		zap.Float64("price", price),
		zap.Float64("cost", cost),
		zap.Float64("margin", float64(c.Margin)),
		zap.String("category", c.Category))

	if err := s.Recorder.RecordClassification(&recorder.ClassificationEvent{
		Source: s.Source, Price: price, Cost: cost, Classification: c,
	}); err != nil {
		s.Logger.Error("record classification", zap.Error(err))
	}
	return c, format.ClassificationReport(price, cost, c, s.Settings.Currency), nil
}

// Simulate runs one discount scenario. units < 0 uses the configured default.
func (s *Service) Simulate(price, cost float64, discount model.Percent, units int) (*model.SimulationResult, string, error) {
	results, report, err := s.simulate(price, cost, []model.Percent{discount}, units)
	if err != nil {
		return nil, "", err
	}
	return results[0], report, nil
}

// Discounts runs the configured discount ladder. units < 0 uses the configured default.
func (s *Service) Discounts(price, cost float64, units int) ([]*model.SimulationResult, string, error) {
	return s.simulate(price, cost, s.Settings.Discounts, units)
}

func (s *Service) simulate(price, cost float64, discounts []model.Percent, units int) ([]*model.SimulationResult, string, error) {
	if units < 0 {
		units = s.Settings.MonthlyUnits
	}
	results, err := simulator.SimulateDiscounts(price, cost, discounts, units, s.Settings.Table)
	if err != nil {
		return nil, "", err
	}
	for _, r := range results {
		s.Logger.Info("discount simulated",
			zap.Float64("price", price),
			zap.Float64("discount", float64(r.Discount)),
			zap.Float64("resulting_margin_pct", float64(r.ResultingMargin)),
			zap.String("recommendation", r.Recommendation))
		if err := s.Recorder.RecordSimulation(&recorder.SimulationEvent{
			Source: s.Source, MonthlyUnits: units, Result: r,
		}); err != nil {
			s.Logger.Error("record simulation", zap.Error(err))
		}
	}

	report := format.SimulationReport(results, s.Settings.Currency)
	floor := s.Settings.Refs.Minimum.Resolve(s.Settings.Table)
	if limit, err := simulator.MaxDiscount(price, cost, floor); err == nil {
		report += fmt.Sprintf("\nDescuento máximo con margen ≥ %s: %.2f%%\n", floor, float64(limit))
	}
	return results, report, nil
}

// Ranges renders the active margin table.
func (s *Service) Ranges() string {
	return format.RangesReport(s.Settings.Table)
}
