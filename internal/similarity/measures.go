package similarity

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Jaccard is |A∩B| / |A∪B| over the token sets. Two empty sets are
// identical (1.0); exactly one empty set scores 0.0.
func Jaccard(tokensA, tokensB []string) float64 {
	setA := tokenSet(tokensA)
	setB := tokenSet(tokensB)

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// Cosine compares term-frequency vectors built over the union vocabulary.
func Cosine(tokensA, tokensB []string) float64 {
	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 1.0
	}
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	countsA := termCounts(tokensA)
	countsB := termCounts(tokensB)

	var dotProduct, normA, normB float64
	for tok, ca := range countsA {
		normA += ca * ca
		if cb, ok := countsB[tok]; ok {
			dotProduct += ca * cb
		}
	}
	for _, cb := range countsB {
		normB += cb * cb
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SequenceRatio is 2*M/T where M is the number of runes matched by greedy
// longest-common-block matching and T is the total rune count of both texts.
func SequenceRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	return difflib.NewMatcher(runeStrings(a), runeStrings(b)).Ratio()
}

// EditRatio is 1 - d/max(|a|,|b|) where d is the diff-based Levenshtein
// distance in runes.
func EditRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)

	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	return 1.0 - float64(distance)/float64(longest)
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func termCounts(tokens []string) map[string]float64 {
	counts := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}

func runeStrings(s string) []string {
	return strings.Split(s, "")
}

func clamp(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0.0
	case score > 1:
		return 1.0
	}
	return score
}
