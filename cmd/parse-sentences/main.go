package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/oldbailey/proceedings/pkg/proceedings/export"
	"github.com/oldbailey/proceedings/pkg/proceedings/sentence"
)

func main() {
	var (
		inPath   = flag.String("in", "", "CSV of sentence,occurrences rows (required)")
		workbook = flag.String("workbook", "", "Optional: write XLSX mapping sheet to this path")
	)
	flag.Parse()

	if *inPath == "" {
		log.Fatal("-in required")
	}

	rows, err := readSentenceCSV(*inPath)
	if err != nil {
		log.Fatalf("read %s: %v", *inPath, err)
	}

	parser := sentence.NewParser()
	var (
		out          []export.SentenceRow
		missed       int
		missedWeight int
		totalWeight  int
	)
	for _, row := range rows {
		totalWeight += row.occurrences
		res := export.SentenceRow{Sentence: row.sentence, Occurrences: row.occurrences}
		if d, err := parser.Parse(row.sentence); err == nil {
			res.Result = &d
		} else {
			res.Err = err.Error()
			missed++
			missedWeight += row.occurrences
		}
		out = append(out, res)
	}

	fmt.Printf("Parsed %d distinct sentences, missed %d\n", len(rows)-missed, missed)
	if totalWeight > 0 {
		fmt.Printf("Coverage by occurrence: %.2f%%\n",
			100-100*float64(missedWeight)/float64(totalWeight))
	}
	for _, res := range out {
		if res.Err != "" {
			fmt.Printf("  miss (%d): %s\n", res.Occurrences, res.Sentence)
		}
	}

	if *workbook != "" {
		wb := export.NewWorkbook()
		defer wb.Close()
		if err := wb.AddSentenceMapping(out); err != nil {
			log.Fatalf("build mapping sheet: %v", err)
		}
		if err := wb.SaveAs(*workbook); err != nil {
			log.Fatalf("write workbook: %v", err)
		}
		fmt.Printf("Wrote mapping to %s\n", *workbook)
	}
}

type sentenceCount struct {
	sentence    string
	occurrences int
}

// readSentenceCSV reads sentence,occurrences rows, skipping the header,
// blank sentences and the spreadsheet's trailing "Grand Total" row.
func readSentenceCSV(path string) ([]sentenceCount, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows []sentenceCount
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			continue
		}
		if len(rec) < 2 {
			continue
		}
		s := strings.TrimSpace(rec[0])
		if s == "" || strings.EqualFold(s, "Grand Total") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			continue
		}
		rows = append(rows, sentenceCount{sentence: s, occurrences: n})
	}
	return rows, nil
}
