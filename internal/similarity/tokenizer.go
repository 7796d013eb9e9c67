package similarity

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-ego/gse"
	"github.com/sirupsen/logrus"
)

// Segmenter splits a run of CJK ideographs into words.
type Segmenter interface {
	Segment(text string) []string
}

type dictSegmenter struct {
	seg *gse.Segmenter
}

// NewDictSegmenter loads a gse dictionary segmenter. An empty path loads the
// zh dictionary compiled into the binary; otherwise path is a comma
// separated file list.
func NewDictSegmenter(path string) (Segmenter, error) {
	return loadDictSegmenter(&gse.Segmenter{SkipLog: true}, path)
}

func loadDictSegmenter(seg *gse.Segmenter, path string) (Segmenter, error) {
	var err error
	if path == "" {
		err = seg.LoadDictEmbed()
	} else {
		err = seg.LoadDict(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load segmenter dictionary: %w", err)
	}
	return &dictSegmenter{seg: seg}, nil
}

func (s *dictSegmenter) Segment(text string) []string {
	return s.seg.Cut(text, true)
}

// Tokenizer turns raw text into normalized word tokens.
type Tokenizer struct {
	segmenter Segmenter
	logger    *logrus.Entry
}

// NewTokenizer creates a tokenizer. A nil segmenter makes every CJK run a
// single field, i.e. plain whitespace splitting.
func NewTokenizer(segmenter Segmenter, logger *logrus.Entry) *Tokenizer {
	if logger == nil {
		logger = logrus.WithField("component", "tokenizer")
	}
	return &Tokenizer{
		segmenter: segmenter,
		logger:    logger,
	}
}

// Tokenize normalizes text and splits it into tokens longer than one rune.
func (t *Tokenizer) Tokenize(text string) []string {
	return t.segment(Normalize(text))
}

func (t *Tokenizer) segment(normalized string) (tokens []string) {
	fields := strings.Fields(normalized)
	if t.segmenter == nil {
		return keepTokens(fields)
	}

	defer func() {
		if r := recover(); r != nil {
			t.logger.WithField("panic", r).Warn("Segmentation failed, falling back to whitespace split")
			tokens = keepTokens(fields)
		}
	}()

	raw := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, run := range splitScripts(field) {
			if r, _ := utf8.DecodeRuneInString(run); isHan(r) {
				raw = append(raw, t.segmenter.Segment(run)...)
			} else {
				raw = append(raw, run)
			}
		}
	}
	return keepTokens(raw)
}

// Normalize lower-cases ASCII letters, replaces every rune that is not a CJK
// ideograph, ASCII letter or digit with a space, and collapses spaces.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		switch {
		case r >= 'A' && r <= 'Z':
			r += 'a' - 'A'
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', isHan(r):
		default:
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isHan(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FA5
}

// splitScripts cuts a whitespace-free field into alternating CJK and
// Latin/digit runs, e.g. "登录api超时" -> ["登录", "api", "超时"].
func splitScripts(field string) []string {
	var runs []string
	start := 0
	prevHan := false
	for i, r := range field {
		han := isHan(r)
		if i > 0 && han != prevHan {
			runs = append(runs, field[start:i])
			start = i
		}
		prevHan = han
	}
	if start < len(field) {
		runs = append(runs, field[start:])
	}
	return runs
}

func keepTokens(raw []string) []string {
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.TrimSpace(tok)
		if utf8.RuneCountInString(tok) > 1 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
