package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/oldbailey/proceedings/pkg/proceedings/config"
	"github.com/oldbailey/proceedings/pkg/proceedings/corpus"
	"github.com/oldbailey/proceedings/pkg/proceedings/export"
	"github.com/oldbailey/proceedings/pkg/proceedings/occupation"
	"github.com/oldbailey/proceedings/pkg/proceedings/stats"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML run config")
		dataDir    = flag.String("data", "", "Sessions XML directory (overrides config)")
		minYear    = flag.Int("from", 0, "First session year (overrides config)")
		maxYear    = flag.Int("to", 0, "Last session year (overrides config)")
		occCSV     = flag.String("occupations", "", "Occupation classification CSV")
		workers    = flag.Int("workers", 0, "Parallel file workers (overrides config)")
		workbook   = flag.String("workbook", "", "Optional: write XLSX summary to this path")
		sqlitePath = flag.String("sqlite", "", "Optional: write SQLite export to this path")
	)
	flag.Parse()

	cfg := loadConfig(*configPath)
	applyOverrides(cfg, *dataDir, *minYear, *maxYear, *occCSV, *workers)
	if *workbook != "" {
		cfg.Output.Workbook = *workbook
	}
	if *sqlitePath != "" {
		cfg.Output.SQLite = *sqlitePath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	var occTable occupation.Table
	if cfg.OccupationCSV != "" {
		occTable, err = occupation.LoadCSV(cfg.OccupationCSV)
		if err != nil {
			log.Fatalf("load occupation table: %v", err)
		}
	}

	ctx := context.Background()
	byDate, err := corpus.Run(ctx, corpus.Options{
		Dir:         cfg.DataDir,
		MinYear:     cfg.MinYear,
		MaxYear:     cfg.MaxYear,
		Occupations: occTable,
		Workers:     cfg.Workers,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("corpus run: %v", err)
	}

	summaries := stats.Summarize(byDate)
	printSummaries(summaries)

	report := stats.Count(byDate)
	fmt.Printf("\nProcessed %d trials (%d corrected, %d skipped), %.2f%% success\n",
		report.Total, report.Corrected, report.Skipped, report.SuccessPercent())

	if cfg.Output.Workbook != "" {
		wb := export.NewWorkbook()
		if err := wb.AddSummary(summaries, cfg.MinYear, cfg.MaxYear); err != nil {
			log.Fatalf("build workbook: %v", err)
		}
		if err := wb.SaveAs(cfg.Output.Workbook); err != nil {
			log.Fatalf("write workbook: %v", err)
		}
		wb.Close()
		fmt.Printf("Wrote workbook to %s\n", cfg.Output.Workbook)
	}

	if cfg.Output.SQLite != "" {
		runID, err := export.WriteSQLite(ctx, cfg.Output.SQLite, byDate, cfg.MinYear, cfg.MaxYear)
		if err != nil {
			log.Fatalf("write sqlite export: %v", err)
		}
		fmt.Printf("Wrote SQLite export %s (run %s)\n", cfg.Output.SQLite, runID)
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return cfg
}

func applyOverrides(cfg *config.Config, dataDir string, minYear, maxYear int, occCSV string, workers int) {
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if minYear != 0 {
		cfg.MinYear = minYear
	}
	if maxYear != 0 {
		cfg.MaxYear = maxYear
	}
	if occCSV != "" {
		cfg.OccupationCSV = occCSV
	}
	if workers != 0 {
		cfg.Workers = workers
	}
}

func printSummaries(summaries map[stats.CategoryPair]*stats.OffenceSummary) {
	for _, key := range stats.SortedKeys(summaries) {
		sum := summaries[key]
		fmt.Printf("\n%s / %s\n", key.Category, key.Subcategory)
		fmt.Printf("  Guilty: %d  Not Guilty: %d\n",
			sum.VerdictCategories["guilty"], sum.VerdictCategories["notGuilty"])

		fmt.Println("  Verdicts:")
		for _, row := range stats.MostCommon(sum.Verdicts) {
			fmt.Printf("    %-20s %-24s %d\n", row.Pair.Category, row.Pair.Subcategory, row.N)
		}
		fmt.Println("  Punishments:")
		for _, row := range stats.MostCommon(sum.Punishments) {
			fmt.Printf("    %-20s %-24s %d\n", row.Pair.Category, row.Pair.Subcategory, row.N)
		}
	}
}
