package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"agave/internal/catalog"
	"agave/internal/model"
	"agave/internal/pricing"
	"agave/internal/recorder"
	"agave/internal/scheduler"
)

var (
	jsonOutput   bool
	targetMargin float64
	monthlyUnits int
	catalogFile  string
	catalogURL   string
)

var priceCmd = &cobra.Command{
	Use:   "price <cost>",
	Short: "Compute the price ladder for a unit cost",
	Long: `Computes the minimum, recommended, optimal and premium prices for a cost,
plus the price at the top of every margin band.

Example:
  agave price 7.10 --margin 0.27`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cost, err := parseArg("cost", args[0])
		if err != nil {
			return err
		}
		var target *model.Fraction
		if cmd.Flags().Changed("margin") {
			m := model.Fraction(targetMargin)
			target = &m
		}
		return withService(func(svc *pricing.Service) (any, string, error) {
			return svc.Price(cost, target)
		})
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <price> <cost>",
	Short: "Classify the margin of a price over a cost",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nums, err := parseArgs([]string{"price", "cost"}, args)
		if err != nil {
			return err
		}
		return withService(func(svc *pricing.Service) (any, string, error) {
			return svc.Classify(nums[0], nums[1])
		})
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <price> <cost> <discount%>",
	Short: "Simulate one discount on a price",
	Long: `Simulates a percentage discount and reports the resulting margin, its band,
a recommendation and the monthly profit impact.

Example:
  agave simulate 9.82 7.10 10 --units 100`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		nums, err := parseArgs([]string{"price", "cost", "discount"}, args)
		if err != nil {
			return err
		}
		return withService(func(svc *pricing.Service) (any, string, error) {
			return svc.Simulate(nums[0], nums[1], model.Percent(nums[2]), unitsFlag(cmd))
		})
	},
}

var discountsCmd = &cobra.Command{
	Use:   "discounts <price> <cost>",
	Short: "Simulate the configured discount ladder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nums, err := parseArgs([]string{"price", "cost"}, args)
		if err != nil {
			return err
		}
		return withService(func(svc *pricing.Service) (any, string, error) {
			return svc.Discounts(nums[0], nums[1], unitsFlag(cmd))
		})
	},
}

var rangesCmd = &cobra.Command{
	Use:   "ranges",
	Short: "List the active margin bands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *pricing.Service) (any, string, error) {
			return svc.Settings.Table.Ranges(), svc.Ranges(), nil
		})
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Reprice the product catalog once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := newSource()
		if err != nil {
			return err
		}
		rec := openRecorder()
		defer rec.Close()
		svc, err := newService(rec, recorder.SourceCatalog)
		if err != nil {
			return err
		}

		sched := scheduler.NewScheduler(cmd.Context(), src, svc, nil, rec, logger)
		if jsonOutput {
			reports, err := sched.RepriceCatalog(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(reports)
		}

		report, err := sched.CatalogReport(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Print(plainText(report))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{priceCmd, classifyCmd, simulateCmd, discountsCmd, rangesCmd, catalogCmd} {
		c.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	}
	priceCmd.Flags().Float64VarP(&targetMargin, "margin", "m", 0, "target margin as a fraction (default from config)")
	simulateCmd.Flags().IntVarP(&monthlyUnits, "units", "u", 0, "monthly units sold (default from config)")
	discountsCmd.Flags().IntVarP(&monthlyUnits, "units", "u", 0, "monthly units sold (default from config)")
	catalogCmd.Flags().StringVar(&catalogFile, "file", "", "catalog file (overrides config)")
	catalogCmd.Flags().StringVar(&catalogURL, "url", "", "catalog URL (overrides config)")
}

// withService opens a recorder, runs fn against a CLI-tagged service and
// prints either the report or the JSON result.
func withService(fn func(svc *pricing.Service) (any, string, error)) error {
	rec := openRecorder()
	defer rec.Close()
	svc, err := newService(rec, recorder.SourceCLI)
	if err != nil {
		return err
	}
	result, report, err := fn(svc)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(result)
	}
	fmt.Print(plainText(report))
	return nil
}

func unitsFlag(cmd *cobra.Command) int {
	if cmd.Flags().Changed("units") {
		return monthlyUnits
	}
	return -1
}

// newSource picks the catalog source: a URL wins over a file.
func newSource() (catalog.Source, error) {
	file, rawURL := cfg.Catalog.File, cfg.Catalog.URL
	if catalogFile != "" || catalogURL != "" {
		file, rawURL = catalogFile, catalogURL
	}
	switch {
	case rawURL != "":
		return catalog.NewHTTPSource(rawURL, cfg.Proxy), nil
	case file != "":
		return catalog.NewFileSource(file), nil
	default:
		return nil, fmt.Errorf("no catalog configured: set catalog.file or catalog.url")
	}
}

func parseArg(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

func parseArgs(names, raw []string) ([]float64, error) {
	out := make([]float64, len(raw))
	for i := range raw {
		v, err := parseArg(names[i], raw[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Reports are written for the chat's HTML parse mode.
var htmlStripper = strings.NewReplacer("<b>", "", "</b>", "", "&lt;", "<", "&gt;", ">", "&amp;", "&")

func plainText(report string) string {
	return htmlStripper.Replace(report)
}
