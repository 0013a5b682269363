// Package similarity scores submitted text against the abstracts already in
// the repository.
package similarity

import (
	"unicode"
)

// Compare returns the Sørensen–Dice coefficient of the character bigrams of a
// and b, ignoring whitespace. The result is in [0, 1].
func Compare(a, b string) float64 {
	first := stripSpace(a)
	second := stripSpace(b)

	if string(first) == string(second) {
		return 1
	}
	if len(first) < 2 || len(second) < 2 {
		return 0
	}

	bigrams := make(map[[2]rune]int, len(first)-1)
	for i := 0; i < len(first)-1; i++ {
		bigrams[[2]rune{first[i], first[i+1]}]++
	}

	intersection := 0
	for i := 0; i < len(second)-1; i++ {
		key := [2]rune{second[i], second[i+1]}
		if bigrams[key] > 0 {
			bigrams[key]--
			intersection++
		}
	}

	return float64(2*intersection) / float64(len(first)+len(second)-2)
}

func stripSpace(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			out = append(out, r)
		}
	}
	return out
}
