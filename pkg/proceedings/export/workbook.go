// Package export materializes corpus results as flat files: an XLSX
// workbook for the researchers, a relational SQLite export, and CSV
// tallies.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/oldbailey/proceedings/pkg/proceedings/sentence"
	"github.com/oldbailey/proceedings/pkg/proceedings/stats"
)

// Workbook builds the spreadsheet output sheet by sheet.
type Workbook struct {
	f        *excelize.File
	tableSeq int
}

// NewWorkbook creates an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{f: excelize.NewFile()}
}

// SaveAs writes the workbook, dropping the default empty sheet.
func (w *Workbook) SaveAs(path string) error {
	if idx, err := w.f.GetSheetIndex("Sheet1"); err == nil && idx != -1 && w.f.SheetCount > 1 {
		if err := w.f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}
	return w.f.SaveAs(path)
}

// Close releases the underlying file resources.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// AddSummary writes the per-offence summary sheet. Offences of one
// category share a row band, one four-column block per subcategory;
// each block carries the guilty/notGuilty headline and the full verdict
// and punishment breakdown tables.
func (w *Workbook) AddSummary(summaries map[stats.CategoryPair]*stats.OffenceSummary, minYear, maxYear int) error {
	const sheet = "Summary"
	if _, err := w.f.NewSheet(sheet); err != nil {
		return err
	}

	if err := w.setCells(sheet, 1, 1, "Offence Summary"); err != nil {
		return err
	}
	if err := w.setCells(sheet, 2, 1, "Start Year", minYear); err != nil {
		return err
	}
	if err := w.setCells(sheet, 3, 1, "End Year", maxYear); err != nil {
		return err
	}

	keys := stats.SortedKeys(summaries)
	startRow := 5
	for i := 0; i < len(keys); {
		category := keys[i].Category
		col := 1
		bandEnd := startRow
		for ; i < len(keys) && keys[i].Category == category; i++ {
			end, err := w.writeOffenceBlock(sheet, startRow, col, keys[i], summaries[keys[i]])
			if err != nil {
				return err
			}
			if end > bandEnd {
				bandEnd = end
			}
			col += 4
		}
		startRow = bandEnd + 2
	}
	return nil
}

// writeOffenceBlock renders one offence's stats at (row, col) and
// returns the last row used.
func (w *Workbook) writeOffenceBlock(sheet string, row, col int, key stats.CategoryPair, sum *stats.OffenceSummary) (int, error) {
	if err := w.setCells(sheet, row, col, key.Category, key.Subcategory); err != nil {
		return 0, err
	}
	if err := w.setCells(sheet, row+1, col, "Guilty Verdicts: ", sum.VerdictCategories["guilty"]); err != nil {
		return 0, err
	}
	if err := w.setCells(sheet, row+2, col, "Not Guilty Verdicts: ", sum.VerdictCategories["notGuilty"]); err != nil {
		return 0, err
	}

	if err := w.setCells(sheet, row+4, col, "Verdict Breakdown: "); err != nil {
		return 0, err
	}
	verdictEnd, err := w.writeBreakdown(sheet, row+5, col, stats.MostCommon(sum.Verdicts))
	if err != nil {
		return 0, err
	}

	if err := w.setCells(sheet, verdictEnd+2, col, "Punishment Breakdown: "); err != nil {
		return 0, err
	}
	punishmentEnd, err := w.writeBreakdown(sheet, verdictEnd+3, col, stats.MostCommon(sum.Punishments))
	if err != nil {
		return 0, err
	}
	return punishmentEnd, nil
}

// writeBreakdown writes a Category/Subcategory/Count table whose header
// sits at headerRow, returning the last data row.
func (w *Workbook) writeBreakdown(sheet string, headerRow, col int, rows []stats.PairCount) (int, error) {
	if err := w.setCells(sheet, headerRow, col, "Category", "Subcategory", "Count"); err != nil {
		return 0, err
	}
	r := headerRow
	for _, pc := range rows {
		r++
		if err := w.setCells(sheet, r, col, pc.Pair.Category, pc.Pair.Subcategory, pc.N); err != nil {
			return 0, err
		}
	}
	if r > headerRow {
		if err := w.addTable(sheet, headerRow, col, r, col+2); err != nil {
			return 0, err
		}
	}
	return r, nil
}

// SentenceRow is one parsed (or rejected) punishment sentence for the
// mapping sheet.
type SentenceRow struct {
	Sentence    string
	Occurrences int
	Result      *sentence.Duration
	Err         string
}

// AddSentenceMapping writes the sentence-length mapping sheet.
func (w *Workbook) AddSentenceMapping(rows []SentenceRow) error {
	const sheet = "Sentence Mapping"
	if _, err := w.f.NewSheet(sheet); err != nil {
		return err
	}

	header := []any{"Sentence", "Occurrences", "Length - Phrase", "Length - Number",
		"Length - Unit", "Months (Approx.)", "Parse Error"}
	if err := w.setCells(sheet, 1, 1, header...); err != nil {
		return err
	}
	for i, row := range rows {
		cells := []any{row.Sentence, row.Occurrences, nil, nil, nil, nil, nil}
		if row.Result != nil {
			cells[2] = row.Result.Phrase
			cells[3] = row.Result.Number
			cells[4] = row.Result.Unit
			cells[5] = row.Result.Months
		} else {
			cells[6] = row.Err
		}
		if err := w.setCells(sheet, i+2, 1, cells...); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		return w.addTable(sheet, 1, 1, len(rows)+1, len(header))
	}
	return nil
}

// setCells writes values left to right starting at (row, col).
func (w *Workbook) setCells(sheet string, row, col int, values ...any) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+i, row)
		if err != nil {
			return err
		}
		if err := w.f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) addTable(sheet string, r1, c1, r2, c2 int) error {
	from, err := excelize.CoordinatesToCellName(c1, r1)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(c2, r2)
	if err != nil {
		return err
	}
	w.tableSeq++
	return w.f.AddTable(sheet, &excelize.Table{
		Range: from + ":" + to,
		Name:  fmt.Sprintf("Breakdown%d", w.tableSeq),
	})
}
