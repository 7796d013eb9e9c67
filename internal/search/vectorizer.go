package search

import (
	"math"
)

// Vectorizer turns text into a vector
type Vectorizer interface {
	Fit(docs []string)
	Transform(text string) []float64
}

// TFIDFVectorizer implements Term Frequency - Inverse Document Frequency
type TFIDFVectorizer struct {
	Vocabulary map[string]int
	IDF        map[string]float64
	tokenizer  Tokenizer
}

func NewTFIDFVectorizer(tokenizer Tokenizer) *TFIDFVectorizer {
	return &TFIDFVectorizer{
		Vocabulary: make(map[string]int),
		IDF:        make(map[string]float64),
		tokenizer:  tokenizer,
	}
}

// Fit rebuilds vocabulary and IDF stats from the whole corpus
func (v *TFIDFVectorizer) Fit(docs []string) {
	v.Vocabulary = make(map[string]int)
	v.IDF = make(map[string]float64)

	docCount := float64(len(docs))
	wordDocCounts := make(map[string]int)

	for _, doc := range docs {
		seenInDoc := make(map[string]bool)
		for _, token := range v.tokenizer.Tokenize(doc) {
			if !seenInDoc[token] {
				wordDocCounts[token]++
				seenInDoc[token] = true
			}
			if _, exists := v.Vocabulary[token]; !exists {
				v.Vocabulary[token] = len(v.Vocabulary)
			}
		}
	}

	for word, count := range wordDocCounts {
		// idf = log(N / (df + 1)) + 1
		v.IDF[word] = math.Log(docCount/(float64(count)+1)) + 1
	}
}

// Transform converts text to a vector based on the learned vocabulary
func (v *TFIDFVectorizer) Transform(text string) []float64 {
	vector := make([]float64, len(v.Vocabulary))
	tokens := v.tokenizer.Tokenize(text)
	if len(tokens) == 0 {
		return vector
	}

	tf := make(map[string]float64)
	for _, token := range tokens {
		tf[token]++
	}

	for token, count := range tf {
		if idx, exists := v.Vocabulary[token]; exists {
			vector[idx] = (count / float64(len(tokens))) * v.IDF[token]
		}
	}

	return vector
}
