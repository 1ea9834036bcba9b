package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists engine results to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets report readers run while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_calculations (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp         INTEGER NOT NULL,
			source            TEXT,
			run_id            TEXT,
			sku               TEXT,
			cost              REAL,
			target_margin     REAL,
			target_category   TEXT,
			minimum_price     REAL,
			recommended_price REAL,
			optimal_price     REAL,
			premium_price     REAL,
			ladder            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_calc_ts ON price_calculations(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_calc_run ON price_calculations(run_id)`,

		`CREATE TABLE IF NOT EXISTS classifications (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			source         TEXT,
			run_id         TEXT,
			sku            TEXT,
			price          REAL,
			cost           REAL,
			margin         REAL,
			category       TEXT,
			next_category  TEXT,
			required_price REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_class_ts ON classifications(timestamp)`,

		`CREATE TABLE IF NOT EXISTS discount_simulations (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp            INTEGER NOT NULL,
			source               TEXT,
			original_price       REAL,
			discounted_price     REAL,
			discount_pct         REAL,
			cost                 REAL,
			original_margin      REAL,
			resulting_margin_pct REAL,
			category             TEXT,
			annual_impact        REAL,
			monthly_units        INTEGER,
			recommendation       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sim_ts ON discount_simulations(timestamp)`,

		`CREATE TABLE IF NOT EXISTS catalog_runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			run_id        TEXT NOT NULL UNIQUE,
			source_name   TEXT,
			products      INTEGER,
			priced        INTEGER,
			below_minimum INTEGER
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCalculation(evt *CalculationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return insertCalculation(r.db, time.Now().Unix(), "", evt)
}

func (r *SQLiteRecorder) RecordClassification(evt *ClassificationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return insertClassification(r.db, time.Now().Unix(), "", evt)
}

func (r *SQLiteRecorder) RecordSimulation(evt *SimulationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := evt.Result
	_, err := r.db.Exec(`INSERT INTO discount_simulations
		(timestamp, source, original_price, discounted_price, discount_pct, cost,
		 original_margin, resulting_margin_pct, category, annual_impact, monthly_units, recommendation)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Source, res.OriginalPrice, res.DiscountedPrice, float64(res.Discount), res.Cost,
		float64(res.OriginalMargin), float64(res.ResultingMargin), res.Category, res.AnnualImpact,
		evt.MonthlyUnits, res.Recommendation,
	)
	return err
}

// RecordCatalogRun writes the run row and every product's calculation and
// classification in one transaction.
func (r *SQLiteRecorder) RecordCatalogRun(run *CatalogRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	if _, err := tx.Exec(`INSERT INTO catalog_runs
		(timestamp, run_id, source_name, products, priced, below_minimum)
		VALUES (?,?,?,?,?,?)`,
		now, run.RunID, run.SourceName, run.Products, run.Priced, run.BelowMinimum,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, rep := range run.Reports {
		if err := insertCalculation(tx, now, run.RunID, &CalculationEvent{
			Source: SourceCatalog, SKU: rep.Product.SKU, Calculation: rep.Calculation,
		}); err != nil {
			return fmt.Errorf("insert calculation %s: %w", rep.Product.SKU, err)
		}
		if rep.Classification == nil {
			continue
		}
		if err := insertClassification(tx, now, run.RunID, &ClassificationEvent{
			Source: SourceCatalog, SKU: rep.Product.SKU,
			Price: rep.Product.Price, Cost: rep.Product.Cost, Classification: rep.Classification,
		}); err != nil {
			return fmt.Errorf("insert classification %s: %w", rep.Product.SKU, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Debug("catalog run recorded", zap.String("run_id", run.RunID), zap.Int("products", len(run.Reports)))
	return nil
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}

func insertCalculation(ex execer, ts int64, runID string, evt *CalculationEvent) error {
	calc := evt.Calculation
	ladder, err := json.Marshal(finiteLadder(calc.PricesByCategory))
	if err != nil {
		return fmt.Errorf("marshal ladder: %w", err)
	}
	_, err = ex.Exec(`INSERT INTO price_calculations
		(timestamp, source, run_id, sku, cost, target_margin, target_category,
		 minimum_price, recommended_price, optimal_price, premium_price, ladder)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		ts, evt.Source, nullString(runID), evt.SKU, calc.Cost, float64(calc.TargetMargin), calc.TargetCategory,
		nullFloat(calc.MinimumPrice), nullFloat(calc.RecommendedPrice),
		nullFloat(calc.OptimalPrice), nullFloat(calc.PremiumPrice), string(ladder),
	)
	return err
}

func insertClassification(ex execer, ts int64, runID string, evt *ClassificationEvent) error {
	c := evt.Classification
	var next sql.NullString
	var required sql.NullFloat64
	if c.Next != nil {
		next = sql.NullString{String: c.Next.Category, Valid: true}
		required = nullFloat(c.Next.RequiredPrice)
	}
	_, err := ex.Exec(`INSERT INTO classifications
		(timestamp, source, run_id, sku, price, cost, margin, category, next_category, required_price)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		ts, evt.Source, nullString(runID), evt.SKU, evt.Price, evt.Cost, float64(c.Margin), c.Category, next, required,
	)
	return err
}

// nullFloat stores unbounded prices (margin >= 1) as NULL.
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func finiteLadder(ladder map[string]float64) map[string]*float64 {
	out := make(map[string]*float64, len(ladder))
	for k, v := range ladder {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			out[k] = nil
			continue
		}
		v := v
		out[k] = &v
	}
	return out
}
