// Package occupation binds the hand-curated occupation classification
// table to the occupation strings found in session records.
package occupation

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/oldbailey/proceedings/pkg/proceedings/internalerr"
	"github.com/oldbailey/proceedings/pkg/proceedings/text"
)

// Occupation is one classified occupation. WorkingClass and Skilled are
// tri-state: nil means the table had no judgement for that axis.
type Occupation struct {
	Name         string
	WorkingClass *bool
	Skilled      *bool
}

// Table maps a normalized-titlecase occupation name to its
// classification.
type Table map[string]*Occupation

// LoadCSV reads the classification table. The file must carry an
// `Occupation` column plus `class` and `skilled` code columns. Rows
// whose occupation field contains no alphabetic character are rejected.
func LoadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read occupation table header: %w", err)
	}
	occCol, classCol, skillCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "occupation":
			occCol = i
		case "class":
			classCol = i
		case "skilled":
			skillCol = i
		}
	}
	if occCol < 0 {
		return nil, fmt.Errorf("%w: no Occupation column", internalerr.ErrBadTable)
	}

	table := Table{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read occupation table row: %w", err)
		}
		if occCol >= len(row) {
			continue
		}
		name := row[occCol]
		if !hasLetter(name) {
			continue
		}
		occ := &Occupation{Name: name}
		if classCol >= 0 && classCol < len(row) {
			occ.WorkingClass = parseClassCode(row[classCol])
		}
		if skillCol >= 0 && skillCol < len(row) {
			occ.Skilled = parseSkillCode(row[skillCol])
		}
		table[name] = occ
	}
	return table, nil
}

// Resolved is the outcome of classifying a raw occupation string:
// either the matched table entry, or the normalized raw string when the
// table has no entry for it. Both fields zero means empty input.
type Resolved struct {
	Occupation *Occupation
	Raw        string
}

// Empty reports whether the classification resolved to nothing.
func (r Resolved) Empty() bool {
	return r.Occupation == nil && r.Raw == ""
}

// Classify looks up the normalized-titlecase form of raw. A miss keeps
// the normalized string; empty input resolves to nothing.
func (t Table) Classify(raw string) Resolved {
	name := text.NormalizeTitle(raw)
	if name == "" {
		return Resolved{}
	}
	if occ, ok := t[name]; ok {
		return Resolved{Occupation: occ}
	}
	return Resolved{Raw: name}
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// parseClassCode maps the single-letter class code: "w" means working
// class, any other non-empty code means not, empty means unknown.
func parseClassCode(code string) *bool {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	v := code == "w"
	return &v
}

// parseSkillCode maps "y"/"n"; anything else is unknown.
func parseSkillCode(code string) *bool {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "y":
		v := true
		return &v
	case "n":
		v := false
		return &v
	}
	return nil
}
