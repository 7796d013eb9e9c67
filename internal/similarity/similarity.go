// Package similarity scores how alike two short texts are, such as bug or
// test case titles and descriptions written in mixed Chinese and English.
//
// Three lexical measures are available (token-set Jaccard, term-frequency
// cosine and a longest-matching-block sequence ratio) together with their
// weighted combination. On top of the scores the package ranks candidate
// lists for duplicate detection, extracts keywords and groups texts into
// clusters. Nothing in this package returns an error: degraded input yields
// a safe default score.
package similarity

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Method selects the similarity measure.
type Method string

const (
	MethodJaccard     Method = "jaccard"
	MethodCosine      Method = "cosine"
	MethodLevenshtein Method = "levenshtein" // sequence ratio
	MethodCombined    Method = "combined"
	MethodEdit        Method = "edit"
)

// Defaults used when callers have no preference.
const (
	DefaultThreshold        = 0.7
	DefaultMaxResults       = 10
	DefaultClusterThreshold = 0.8
	DefaultKeywordCount     = 10
)

// ParseMethod maps a method name (case-insensitive) to a Method. The empty
// string selects MethodCombined.
func ParseMethod(name string) (Method, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "combined":
		return MethodCombined, true
	case "jaccard":
		return MethodJaccard, true
	case "cosine":
		return MethodCosine, true
	case "levenshtein", "sequence", "sequence-ratio":
		return MethodLevenshtein, true
	case "edit":
		return MethodEdit, true
	}
	return "", false
}

// Weights are the coefficients of the combined score.
type Weights struct {
	Jaccard  float64 `json:"jaccard"`
	Cosine   float64 `json:"cosine"`
	Sequence float64 `json:"sequence"`
}

// DefaultWeights returns Jaccard 0.3, Cosine 0.4, Sequence 0.3.
func DefaultWeights() Weights {
	return Weights{Jaccard: 0.3, Cosine: 0.4, Sequence: 0.3}
}

// Config configures an Engine.
type Config struct {
	Weights Weights
	// DictPath overrides the embedded segmentation dictionary.
	DictPath string
	// DisableDictionary skips loading the dictionary; CJK text is then split
	// on whitespace only.
	DisableDictionary bool
}

// DefaultConfig returns the default weights with the embedded dictionary.
func DefaultConfig() Config {
	return Config{Weights: DefaultWeights()}
}

// Engine computes similarity scores. It holds only read-only state and is
// safe for concurrent use.
type Engine struct {
	weights   Weights
	tokenizer *Tokenizer
	logger    *logrus.Entry
}

// New creates an Engine. A dictionary file that cannot be loaded is replaced
// by the built-in dictionary; if that fails too the engine logs a warning and
// tokenizes on whitespace.
func New(cfg Config, logger *logrus.Entry) *Engine {
	if logger == nil {
		logger = logrus.WithField("component", "similarity")
	}

	var segmenter Segmenter
	if !cfg.DisableDictionary {
		segmenter = loadSegmenter(cfg.DictPath, logger)
	}
	return NewWithSegmenter(cfg.Weights, segmenter, logger)
}

// loadSegmenter tries path, then the built-in dictionary, and returns nil
// when neither loads.
func loadSegmenter(path string, logger *logrus.Entry) Segmenter {
	if path != "" {
		seg, err := NewDictSegmenter(path)
		if err == nil {
			logger.WithField("dict", path).Debug("Loaded segmentation dictionary")
			return seg
		}
		logger.WithError(err).WithField("dict", path).Warn("Dictionary file unavailable, using built-in dictionary")
	}

	seg, err := NewDictSegmenter("")
	if err != nil {
		logger.WithError(err).Warn("Dictionary segmenter unavailable, using whitespace tokenization")
		return nil
	}
	logger.WithField("dict", "built-in").Debug("Loaded segmentation dictionary")
	return seg
}

// NewWithSegmenter creates an Engine around an explicit segmenter, which may
// be nil.
func NewWithSegmenter(weights Weights, segmenter Segmenter, logger *logrus.Entry) *Engine {
	if logger == nil {
		logger = logrus.WithField("component", "similarity")
	}
	return &Engine{
		weights:   weights,
		tokenizer: NewTokenizer(segmenter, logger),
		logger:    logger,
	}
}

// Weights returns the combined-score weights.
func (e *Engine) Weights() Weights {
	return e.weights
}

// Tokenizer returns the engine's tokenizer.
func (e *Engine) Tokenizer() *Tokenizer {
	return e.tokenizer
}

// Similarity scores a and b in [0,1] with the given method. Two texts that
// are empty after normalization score 1.0, exactly one empty text scores 0.0,
// and any internal failure or unknown method scores 0.0.
func (e *Engine) Similarity(a, b string, method Method) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{
				"method": method,
				"panic":  r,
			}).Warn("Similarity computation failed")
			score = 0.0
		}
	}()

	switch method {
	case MethodJaccard, MethodCosine, MethodLevenshtein, MethodEdit, MethodCombined:
	default:
		e.logger.WithField("method", method).Warn("Unsupported similarity method")
		return 0.0
	}

	na, nb := Normalize(a), Normalize(b)
	// Fixed operand order keeps every measure symmetric.
	if na > nb {
		na, nb = nb, na
	}
	switch {
	case na == nb:
		return 1.0
	case na == "" || nb == "":
		return 0.0
	}

	switch method {
	case MethodJaccard:
		score = Jaccard(e.tokenizer.segment(na), e.tokenizer.segment(nb))
	case MethodCosine:
		score = Cosine(e.tokenizer.segment(na), e.tokenizer.segment(nb))
	case MethodLevenshtein:
		score = SequenceRatio(na, nb)
	case MethodEdit:
		score = EditRatio(na, nb)
	case MethodCombined:
		score = e.combined(na, nb)
	}
	return clamp(score)
}

func (e *Engine) combined(na, nb string) float64 {
	tokensA := e.tokenizer.segment(na)
	tokensB := e.tokenizer.segment(nb)
	return e.weights.Jaccard*Jaccard(tokensA, tokensB) +
		e.weights.Cosine*Cosine(tokensA, tokensB) +
		e.weights.Sequence*SequenceRatio(na, nb)
}
