package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"agave/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Pricing struct {
		Currency         string                  `yaml:"currency"`
		TargetMargin     *model.Fraction     `yaml:"target_margin"`
		MonthlyUnits     *int                `yaml:"monthly_units"`
		Discounts        []model.Percent     `yaml:"discounts"`
		Ranges           []model.MarginRange `yaml:"ranges"`
		ReferenceMargins *ReferenceOverrides `yaml:"reference_margins"`
	} `yaml:"pricing"`
	Catalog struct {
		File string `yaml:"file"`
		URL  string `yaml:"url"`
	} `yaml:"catalog"`
	Schedule struct {
		ReportCron string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		APIBase  string `yaml:"api_base"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// ReferenceOverrides replaces parts of the default reference margins.
type ReferenceOverrides struct {
	Minimum ReferenceOverride `yaml:"minimum"`
	Optimal ReferenceOverride `yaml:"optimal"`
	Premium ReferenceOverride `yaml:"premium"`
}

// ReferenceOverride leaves the default in place for every absent key.
type ReferenceOverride struct {
	Category string          `yaml:"category"`
	Fallback *model.Fraction `yaml:"fallback"`
}

// LoadDotEnv loads variables from envFile into the process environment.
// A missing file is not an error.
func LoadDotEnv(envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("AGAVE_CURRENCY"); v != "" {
		c.Pricing.Currency = strings.ToUpper(v)
	}
	if v := os.Getenv("AGAVE_TARGET_MARGIN"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse AGAVE_TARGET_MARGIN: %w", err)
		}
		target := model.Fraction(m)
		c.Pricing.TargetMargin = &target
	}
	if v := os.Getenv("AGAVE_MONTHLY_UNITS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse AGAVE_MONTHLY_UNITS: %w", err)
		}
		c.Pricing.MonthlyUnits = &n
	}
	if v := os.Getenv("CATALOG_FILE"); v != "" {
		c.Catalog.File = v
	}
	if v := os.Getenv("CATALOG_URL"); v != "" {
		c.Catalog.URL = v
	}
	if v := os.Getenv("CRON_REPORT"); v != "" {
		c.Schedule.ReportCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Pricing.Currency == "" {
		c.Pricing.Currency = "PEN"
	}
	// 0 is a legal target (break-even), so only an absent key gets the default.
	if c.Pricing.TargetMargin == nil {
		target := model.Fraction(0.27)
		c.Pricing.TargetMargin = &target
	}
	if c.Pricing.MonthlyUnits == nil {
		units := 100
		c.Pricing.MonthlyUnits = &units
	}
	if len(c.Pricing.Discounts) == 0 {
		c.Pricing.Discounts = []model.Percent{5, 10, 15, 20, 25}
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 8 * * 1-5"
	}
	if c.Telegram.APIBase == "" {
		c.Telegram.APIBase = "https://api.telegram.org"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/agave.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the pricing settings every command depends on.
func (c *Config) Validate() error {
	if c.Pricing.Currency == "" {
		return fmt.Errorf("pricing.currency is required")
	}
	if m := float64(c.TargetMargin()); math.IsNaN(m) || m < 0 || m >= 1 {
		return fmt.Errorf("pricing.target_margin must be within [0, 1), got %v", m)
	}
	if c.MonthlyUnits() < 0 {
		return fmt.Errorf("pricing.monthly_units must not be negative")
	}
	for _, d := range c.Pricing.Discounts {
		if math.IsNaN(float64(d)) || d < 0 || d > 100 {
			return fmt.Errorf("pricing.discounts must be within [0, 100], got %v", float64(d))
		}
	}
	if _, err := c.RangeTable(); err != nil {
		return fmt.Errorf("pricing.ranges: %w", err)
	}
	return nil
}

// ValidateBot checks the settings the long-running bot needs on top of Validate.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.Catalog.File == "" && c.Catalog.URL == "" {
		return fmt.Errorf("catalog.file or catalog.url is required")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.ReportCron); err != nil {
		return fmt.Errorf("schedule.report_cron: %w", err)
	}
	return nil
}

// TargetMargin is the default target margin for price calculations.
func (c *Config) TargetMargin() model.Fraction {
	if c.Pricing.TargetMargin == nil {
		return 0
	}
	return *c.Pricing.TargetMargin
}

// MonthlyUnits is the default sales volume for discount simulations.
func (c *Config) MonthlyUnits() int {
	if c.Pricing.MonthlyUnits == nil {
		return 0
	}
	return *c.Pricing.MonthlyUnits
}

// RangeTable returns the configured margin table, or the default one.
func (c *Config) RangeTable() (*model.RangeTable, error) {
	if len(c.Pricing.Ranges) == 0 {
		return model.DefaultRangeTable(), nil
	}
	return model.NewRangeTable(c.Pricing.Ranges)
}

// ReferenceMargins returns the configured references, with blanks filled
// from the defaults.
func (c *Config) ReferenceMargins() model.ReferenceMargins {
	refs := model.DefaultReferenceMargins()
	if c.Pricing.ReferenceMargins == nil {
		return refs
	}
	override := *c.Pricing.ReferenceMargins
	fill := func(dst *model.ReferenceMargin, src ReferenceOverride) {
		if src.Category != "" {
			dst.Category = src.Category
		}
		if src.Fallback != nil {
			dst.Fallback = *src.Fallback
		}
	}
	fill(&refs.Minimum, override.Minimum)
	fill(&refs.Optimal, override.Optimal)
	fill(&refs.Premium, override.Premium)
	return refs
}
