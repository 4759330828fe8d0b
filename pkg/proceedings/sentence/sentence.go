// Package sentence extracts a single confinement length from the
// free-text punishment sentences, which spell their numbers out in
// English ("Confined Twenty-Eight Months"). A sentence parses only when
// exactly one length can be identified; anything ambiguous is reported
// as an error rather than guessed at.
package sentence

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/oldbailey/proceedings/pkg/proceedings/internalerr"
)

// unitMonths converts a duration unit to approximate months, assuming
// a month of 4.5 weeks or 31 days. "tear" is a recurring typesetting
// error for "year".
var unitMonths = map[string]float64{
	"day":   1.0 / 31.0,
	"week":  1.0 / 4.5,
	"month": 1.0,
	"year":  12.0,
	"tear":  12.0,
}

// numberWords maps the spelled-out numbers the corpus uses, plus their
// digit forms.
func numberWords() map[string]int {
	words := map[string]int{
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
		"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
		"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
		"nineteen": 19, "twenty": 20, "twenty-one": 21, "twenty-two": 22,
		"twenty-three": 23, "twenty-four": 24, "twenty-five": 25,
		"twenty-six": 26, "twenty-seven": 27, "twenty-eight": 28,
		"twenty-nine": 29, "thirty": 30,
	}
	for i := 1; i <= 30; i++ {
		words[strconv.Itoa(i)] = i
	}
	return words
}

// Duration is one successfully extracted sentence length.
type Duration struct {
	Phrase string // the matched "number unit" span
	Number int
	Unit   string
	Months float64 // approximate
}

// Parser holds the compiled patterns. Safe for concurrent use.
type Parser struct {
	numbers    map[string]int
	unitRe     *regexp.Regexp
	numUnitRe  *regexp.Regexp
	confinedRe *regexp.Regexp
}

// NewParser compiles the duration patterns.
func NewParser() *Parser {
	numbers := numberWords()

	unitAlt := "(" + strings.Join(sortedKeysLongestFirst(unitMonths), "|") + ")"
	numAlt := "(" + strings.Join(numberAlternatives(numbers), "|") + ")"
	numUnit := numAlt + `\s+` + unitAlt

	return &Parser{
		numbers:    numbers,
		unitRe:     regexp.MustCompile(`(?i)` + unitAlt),
		numUnitRe:  regexp.MustCompile(`(?i)` + numUnit),
		confinedRe: regexp.MustCompile(`(?i)^confined\s+` + numUnit),
	}
}

// Parse extracts the single length phrase from one sentence text.
// Sentences with no unit, with several units (outside the "Confined X
// unit; Y unit solitary" form), or with a unit but no recognizable
// number all fail with an error wrapping internalerr.ErrNoMatch.
func (p *Parser) Parse(s string) (Duration, error) {
	units := p.unitRe.FindAllString(s, -1)
	if len(units) == 0 {
		return Duration{}, fmt.Errorf("%w: no duration unit in %q", internalerr.ErrNoMatch, s)
	}
	if len(units) > 1 {
		if strings.HasPrefix(strings.ToLower(s), "confined") {
			return p.parseConfined(s)
		}
		return Duration{}, fmt.Errorf("%w: multiple units %v in %q, parse would be ambiguous",
			internalerr.ErrNoMatch, units, s)
	}

	m := p.numUnitRe.FindStringSubmatch(s)
	if m == nil {
		return Duration{}, fmt.Errorf("%w: unit without a recognizable number in %q",
			internalerr.ErrNoMatch, s)
	}
	return p.duration(m), nil
}

// parseConfined handles "Confined X units; Y units solitary", which
// would otherwise read as ambiguous. Only the leading length counts.
func (p *Parser) parseConfined(s string) (Duration, error) {
	m := p.confinedRe.FindStringSubmatch(s)
	if m == nil {
		return Duration{}, fmt.Errorf("%w: %q has multiple units and no leading confined length",
			internalerr.ErrNoMatch, s)
	}
	return p.duration(m), nil
}

func (p *Parser) duration(m []string) Duration {
	number := p.numbers[strings.ToLower(m[1])]
	unit := strings.ToLower(m[2])
	return Duration{
		Phrase: m[0],
		Number: number,
		Unit:   unit,
		Months: unitMonths[unit] * float64(number),
	}
}

// numberAlternatives orders the spelled-out numbers longest first so
// the alternation prefers "twenty-eight" over its "twenty" prefix.
func numberAlternatives(numbers map[string]int) []string {
	alts := make([]string, 0, len(numbers))
	for w := range numbers {
		alts = append(alts, w)
	}
	sort.Slice(alts, func(i, j int) bool {
		if len(alts[i]) != len(alts[j]) {
			return len(alts[i]) > len(alts[j])
		}
		return alts[i] < alts[j]
	})
	return alts
}

func sortedKeysLongestFirst(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
