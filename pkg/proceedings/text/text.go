// Package text normalizes free-text fields pulled out of session markup.
// The source documents wrap names and descriptions across lines and pad
// them with printing-era whitespace, so every extracted string goes
// through Normalize before it is compared or stored.
package text

import (
	"strings"
	"unicode"
)

// Normalize collapses every whitespace run (including newlines) to a
// single space and trims both ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeTitle normalizes s and then title-cases each word.
func NormalizeTitle(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// titleWord upper-cases the first letter of each alphabetic sequence in
// the word and lower-cases the rest, so "MARY-ANN" becomes "Mary-Ann".
func titleWord(w string) string {
	var b strings.Builder
	b.Grow(len(w))
	prevLetter := false
	for _, r := range w {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
