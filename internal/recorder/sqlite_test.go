package recorder

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agave/internal/calculator"
	"agave/internal/classifier"
	"agave/internal/model"
	"agave/internal/simulator"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "agave.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func countRows(t *testing.T, r *SQLiteRecorder, table string) int {
	t.Helper()
	var n int
	require.NoError(t, r.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestSQLiteRecorder_RecordCalculation(t *testing.T) {
	r := newTestRecorder(t)
	calc, err := calculator.FullPriceCalculation(7.10, 0.27, model.DefaultRangeTable(), model.DefaultReferenceMargins())
	require.NoError(t, err)

	require.NoError(t, r.RecordCalculation(&CalculationEvent{Source: SourceCLI, Calculation: calc}))
	assert.Equal(t, 1, countRows(t, r, "price_calculations"))

	var recommended float64
	var ladder string
	var runID sql.NullString
	require.NoError(t, r.db.QueryRow(
		"SELECT recommended_price, ladder, run_id FROM price_calculations").Scan(&recommended, &ladder, &runID))
	assert.Equal(t, 9.73, recommended)
	assert.Contains(t, ladder, `"excelente":null`)
	assert.False(t, runID.Valid)
}

func TestSQLiteRecorder_RecordClassificationAndSimulation(t *testing.T) {
	r := newTestRecorder(t)
	table := model.DefaultRangeTable()

	top, err := classifier.ClassifyPrice(100, 50, table)
	require.NoError(t, err)
	require.NoError(t, r.RecordClassification(&ClassificationEvent{Source: SourceChat, Price: 100, Cost: 50, Classification: top}))

	var next sql.NullString
	require.NoError(t, r.db.QueryRow("SELECT next_category FROM classifications").Scan(&next))
	assert.False(t, next.Valid)

	sim, err := simulator.SimulateDiscount(9.82, 7.10, 10, 100, table)
	require.NoError(t, err)
	require.NoError(t, r.RecordSimulation(&SimulationEvent{Source: SourceChat, MonthlyUnits: 100, Result: sim}))

	var impact float64
	var rec string
	require.NoError(t, r.db.QueryRow("SELECT annual_impact, recommendation FROM discount_simulations").Scan(&impact, &rec))
	assert.Equal(t, -1176.0, impact)
	assert.Equal(t, "ACCEPTABLE only for high volume", rec)
}

func TestSQLiteRecorder_RecordCatalogRun(t *testing.T) {
	r := newTestRecorder(t)
	table := model.DefaultRangeTable()
	refs := model.DefaultReferenceMargins()

	var reports []model.ProductReport
	for _, p := range []model.Product{{SKU: "A", Cost: 7.10, Price: 8}, {SKU: "B", Cost: 12}} {
		calc, err := calculator.FullPriceCalculation(p.Cost, 0.27, table, refs)
		require.NoError(t, err)
		rep := model.ProductReport{Product: p, Calculation: calc}
		if p.Price > 0 {
			rep.Classification, err = classifier.ClassifyPrice(p.Price, p.Cost, table)
			require.NoError(t, err)
			rep.BelowMinimum = true
		}
		reports = append(reports, rep)
	}

	run := &CatalogRun{
		RunID:        uuid.NewString(),
		SourceName:   "file:catalog.yaml",
		Products:     2,
		Priced:       1,
		BelowMinimum: 1,
		Reports:      reports,
	}
	require.NoError(t, r.RecordCatalogRun(run))
	assert.Equal(t, 1, countRows(t, r, "catalog_runs"))
	assert.Equal(t, 2, countRows(t, r, "price_calculations"))
	assert.Equal(t, 1, countRows(t, r, "classifications"))

	var n int
	require.NoError(t, r.db.QueryRow(
		"SELECT COUNT(*) FROM price_calculations WHERE run_id = ? AND source = ?", run.RunID, SourceCatalog).Scan(&n))
	assert.Equal(t, 2, n)

	// A duplicate run ID rolls the whole run back.
	assert.Error(t, r.RecordCatalogRun(run))
	assert.Equal(t, 2, countRows(t, r, "price_calculations"))
}

func TestSQLiteRecorder_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agave.db")
	r, err := NewSQLiteRecorder(path, nil)
	require.NoError(t, err)
	sim, err := simulator.SimulateDiscount(100, 50, 5, 10, model.DefaultRangeTable())
	require.NoError(t, err)
	require.NoError(t, r.RecordSimulation(&SimulationEvent{Source: SourceCLI, Result: sim}))
	require.NoError(t, r.Close())

	r2, err := NewSQLiteRecorder(path, nil)
	require.NoError(t, err)
	defer r2.Close()
	assert.Equal(t, 1, countRows(t, r2, "discount_simulations"))
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.RecordCalculation(&CalculationEvent{}))
	assert.NoError(t, rec.RecordCatalogRun(&CatalogRun{}))
	assert.NoError(t, rec.Close())
}
