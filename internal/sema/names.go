package sema

import (
	"sort"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// suggest finds the name with the smallest edit distance from name.
// Replacing the whole text does not count as a suggestion.
func suggest(name string, pool []string) string {
	if name == "" {
		return ""
	}
	sorted := append([]string(nil), pool...)
	sort.Strings(sorted)

	nameRunes := []rune(name)
	best, bestDistance := "", len(nameRunes)
	for _, candidate := range sorted {
		if candidate == name {
			continue
		}
		distance := levenshtein.DistanceForStrings(nameRunes, []rune(candidate), levenshtein.DefaultOptions)
		if distance < bestDistance && distance < len([]rune(candidate)) {
			best, bestDistance = candidate, distance
		}
	}
	// short names are all "close"; do not suggest something unrelated
	if best != "" && bestDistance > 2 && bestDistance*2 > len(nameRunes) {
		return ""
	}
	return best
}
