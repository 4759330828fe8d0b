// Package stats folds parsed trial records into the aggregates the
// researchers work from: per-offence verdict and punishment breakdowns,
// run-level success counts, and occupation tallies.
package stats

import (
	"sort"

	"github.com/oldbailey/proceedings/pkg/proceedings/corpus"
	"github.com/oldbailey/proceedings/pkg/proceedings/trial"
)

// CategoryPair is a category/subcategory key. Subcategory may be empty.
type CategoryPair struct {
	Category    string
	Subcategory string
}

// PairCount is one breakdown row.
type PairCount struct {
	Pair CategoryPair
	N    int
}

// OffenceSummary aggregates every charge citing one offence kind.
type OffenceSummary struct {
	// VerdictCategories counts verdicts by bare category (guilty,
	// notGuilty, miscVerdict, ...). The domain is open.
	VerdictCategories map[string]int
	Verdicts          map[CategoryPair]int
	Punishments       map[CategoryPair]int
}

func newOffenceSummary() *OffenceSummary {
	return &OffenceSummary{
		VerdictCategories: map[string]int{},
		Verdicts:          map[CategoryPair]int{},
		Punishments:       map[CategoryPair]int{},
	}
}

// Summarizer accumulates offence summaries record by record.
type Summarizer struct {
	summaries map[CategoryPair]*OffenceSummary
}

// NewSummarizer creates an empty summarizer.
func NewSummarizer() *Summarizer {
	return &Summarizer{summaries: map[CategoryPair]*OffenceSummary{}}
}

// Add folds one record in. A charge citing several offences counts its
// single verdict once per offence; a charge naming several people
// counts that verdict once per offence regardless. Punishments are
// counted per defendant, and only under guilty verdicts.
func (s *Summarizer) Add(td *trial.TrialData) {
	if td == nil {
		return
	}
	for _, charge := range td.Charges {
		for _, off := range charge.Offences {
			key := CategoryPair{off.Category, off.Subcategory}
			sum := s.summaries[key]
			if sum == nil {
				sum = newOffenceSummary()
				s.summaries[key] = sum
			}

			sum.VerdictCategories[charge.Verdict.Category]++
			sum.Verdicts[CategoryPair{charge.Verdict.Category, charge.Verdict.Subcategory}]++

			if charge.Verdict.Category != "guilty" {
				continue
			}
			for _, person := range charge.Defendants {
				for _, pun := range td.Punishments {
					if punishes(pun, person) {
						sum.Punishments[CategoryPair{pun.Category, pun.Subcategory}]++
					}
				}
			}
		}
	}
}

// Summaries returns the accumulated per-offence aggregates.
func (s *Summarizer) Summaries() map[CategoryPair]*OffenceSummary {
	return s.summaries
}

// Summarize folds a whole corpus result.
func Summarize(byDate corpus.ByDate) map[CategoryPair]*OffenceSummary {
	s := NewSummarizer()
	for _, trials := range byDate {
		for _, td := range trials {
			s.Add(td)
		}
	}
	return s.Summaries()
}

func punishes(pun *trial.Punishment, person *trial.Person) bool {
	for _, d := range pun.Defendants {
		if d.ID == person.ID {
			return true
		}
	}
	return false
}

// SortedKeys returns the offence keys in category, subcategory order.
func SortedKeys(summaries map[CategoryPair]*OffenceSummary) []CategoryPair {
	keys := make([]CategoryPair, 0, len(summaries))
	for k := range summaries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Category != keys[j].Category {
			return keys[i].Category < keys[j].Category
		}
		return keys[i].Subcategory < keys[j].Subcategory
	})
	return keys
}

// MostCommon orders a breakdown by descending count, ties by key.
func MostCommon(counts map[CategoryPair]int) []PairCount {
	rows := make([]PairCount, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, PairCount{Pair: k, N: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].N != rows[j].N {
			return rows[i].N > rows[j].N
		}
		if rows[i].Pair.Category != rows[j].Pair.Category {
			return rows[i].Pair.Category < rows[j].Pair.Category
		}
		return rows[i].Pair.Subcategory < rows[j].Pair.Subcategory
	})
	return rows
}

// Report is the run-level outcome tally.
type Report struct {
	Total     int
	Corrected int
	Skipped   int
}

// SuccessPercent is the share of records that produced data.
func (r Report) SuccessPercent() float64 {
	if r.Total == 0 {
		return 0
	}
	return 100 - 100*float64(r.Skipped)/float64(r.Total)
}

// Count tallies record outcomes across a corpus result.
func Count(byDate corpus.ByDate) Report {
	var r Report
	for _, trials := range byDate {
		for _, td := range trials {
			r.Total++
			switch {
			case td == nil:
				r.Skipped++
			case td.Corrected:
				r.Corrected++
			}
		}
	}
	return r
}

// OccupationTallies aggregates the occupation fields of defendants and
// victims.
type OccupationTallies struct {
	// PerYearDefendants counts defendants with any occupation, per
	// trial year.
	PerYearDefendants map[int]int
	// Counts tallies occupation display names across defendants and
	// victims.
	Counts map[string]int
}

// StringCount is one occupation tally row.
type StringCount struct {
	Name string
	N    int
}

// CountOccupations tallies occupations over every record dated
// fromYear or later. Occupation reporting only became systematic late
// in the corpus, so callers cut off the earlier years.
func CountOccupations(byDate corpus.ByDate, fromYear int) OccupationTallies {
	out := OccupationTallies{
		PerYearDefendants: map[int]int{},
		Counts:            map[string]int{},
	}
	for date, trials := range byDate {
		year := date.Year()
		if year < fromYear {
			continue
		}
		for _, td := range trials {
			if td == nil {
				continue
			}
			for _, d := range td.Defendants {
				if name := occupationName(d); name != "" {
					out.PerYearDefendants[year]++
					out.Counts[name]++
				}
			}
			for _, v := range td.Victims {
				if name := occupationName(v); name != "" {
					out.Counts[name]++
				}
			}
		}
	}
	return out
}

func occupationName(p *trial.Person) string {
	if p.Occ.Occupation != nil {
		return p.Occ.Occupation.Name
	}
	return p.Occ.Raw
}

// MostCommonStrings orders an occupation tally by descending count,
// ties alphabetically.
func MostCommonStrings(counts map[string]int) []StringCount {
	rows := make([]StringCount, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, StringCount{Name: k, N: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].N != rows[j].N {
			return rows[i].N > rows[j].N
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
