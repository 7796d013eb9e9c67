package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// TokenCount is a token with its number of occurrences.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Features are simple statistics describing a text.
type Features struct {
	CharCount        int          `json:"char_count"`
	WordCount        int          `json:"word_count"`
	SentenceCount    int          `json:"sentence_count"`
	TokenCount       int          `json:"token_count"`
	UniqueTokens     int          `json:"unique_tokens"`
	MostCommonTokens []TokenCount `json:"most_common_tokens"`
	AvgTokenLength   float64      `json:"avg_token_length"`
	LexicalDiversity float64      `json:"lexical_diversity"`
}

const mostCommonLimit = 5

// Features computes text statistics. SentenceCount is the number of pieces
// left after splitting on sentence terminators, so a text without any
// terminator counts as one sentence.
func (e *Engine) Features(text string) Features {
	tokens := e.tokenizer.Tokenize(text)

	f := Features{
		CharCount:        utf8.RuneCountInString(text),
		WordCount:        len(strings.Fields(text)),
		SentenceCount:    sentenceCount(text),
		TokenCount:       len(tokens),
		MostCommonTokens: make([]TokenCount, 0, mostCommonLimit),
	}

	counts := make(map[string]int)
	var order []string
	totalRunes := 0
	for _, tok := range tokens {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
		totalRunes += utf8.RuneCountInString(tok)
	}
	f.UniqueTokens = len(order)

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	for i := 0; i < len(order) && i < mostCommonLimit; i++ {
		f.MostCommonTokens = append(f.MostCommonTokens, TokenCount{Token: order[i], Count: counts[order[i]]})
	}

	if len(tokens) > 0 {
		f.AvgTokenLength = round(float64(totalRunes)/float64(len(tokens)), 2)
		f.LexicalDiversity = round(float64(f.UniqueTokens)/float64(len(tokens)), 3)
	}
	return f
}

func sentenceCount(text string) int {
	n := 1
	for _, r := range text {
		if strings.ContainsRune(".!?。！？", r) {
			n++
		}
	}
	return n
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
