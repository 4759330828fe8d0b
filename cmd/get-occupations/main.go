package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/oldbailey/proceedings/pkg/proceedings/corpus"
	"github.com/oldbailey/proceedings/pkg/proceedings/export"
	"github.com/oldbailey/proceedings/pkg/proceedings/occupation"
	"github.com/oldbailey/proceedings/pkg/proceedings/stats"
)

// Occupation reporting in the Proceedings only became systematic from
// the early twentieth century, so the tally cuts off earlier years.
const occupationCutoffYear = 1906

func main() {
	var (
		dataDir = flag.String("data", "", "Sessions XML directory (required)")
		minYear = flag.Int("from", 1833, "First session year")
		maxYear = flag.Int("to", 1913, "Last session year")
		occCSV  = flag.String("occupations", "", "Optional: occupation classification CSV")
		workers = flag.Int("workers", corpus.DefaultWorkers, "Parallel file workers")
		outCSV  = flag.String("out", "", "Optional: write Occupation,Occurrences CSV to this path")
	)
	flag.Parse()

	if *dataDir == "" {
		log.Fatal("-data required")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	var occTable occupation.Table
	if *occCSV != "" {
		occTable, err = occupation.LoadCSV(*occCSV)
		if err != nil {
			log.Fatalf("load occupation table: %v", err)
		}
	}

	byDate, err := corpus.Run(context.Background(), corpus.Options{
		Dir:         *dataDir,
		MinYear:     *minYear,
		MaxYear:     *maxYear,
		Occupations: occTable,
		Workers:     *workers,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("corpus run: %v", err)
	}

	report := stats.Count(byDate)
	fmt.Printf("Total trials: %d\n", report.Total)
	fmt.Printf("Corrected:    %d\n", report.Corrected)
	fmt.Printf("Skipped:      %d\n", report.Skipped)
	fmt.Printf("Success:      %.2f%%\n", report.SuccessPercent())

	tallies := stats.CountOccupations(byDate, occupationCutoffYear)

	fmt.Println("\nDefendants with occupations per year:")
	years := make([]int, 0, len(tallies.PerYearDefendants))
	for y := range tallies.PerYearDefendants {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		fmt.Printf("  %d: %d\n", y, tallies.PerYearDefendants[y])
	}

	fmt.Println("\nMost common occupations:")
	rows := stats.MostCommonStrings(tallies.Counts)
	if len(rows) > 20 {
		rows = rows[:20]
	}
	for _, row := range rows {
		fmt.Printf("  %-32s %d\n", row.Name, row.N)
	}

	if *outCSV != "" {
		f, err := os.Create(*outCSV)
		if err != nil {
			log.Fatalf("create %s: %v", *outCSV, err)
		}
		if err := export.WriteOccupationCSV(f, tallies.Counts); err != nil {
			f.Close()
			log.Fatalf("write occupation csv: %v", err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("close %s: %v", *outCSV, err)
		}
		fmt.Printf("\nWrote tally to %s\n", *outCSV)
	}
}
