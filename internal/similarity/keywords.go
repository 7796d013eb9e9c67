package similarity

import "sort"

// Function words that carry no topic signal.
var stopWords = map[string]struct{}{
	"的": {}, "了": {}, "在": {}, "是": {}, "我": {}, "有": {}, "和": {}, "就": {},
	"不": {}, "人": {}, "都": {}, "一": {}, "一个": {}, "上": {}, "也": {}, "很": {},
	"到": {}, "说": {}, "要": {}, "去": {}, "你": {}, "会": {}, "着": {}, "没有": {},
	"看": {}, "好": {}, "自己": {}, "这": {},
}

// IsStopWord reports whether tok is in the stop-word set.
func IsStopWord(tok string) bool {
	_, ok := stopWords[tok]
	return ok
}

// ExtractKeywords returns up to topK of the most frequent non-stop-word
// tokens in text. Equal counts keep first-occurrence order.
func (e *Engine) ExtractKeywords(text string, topK int) []string {
	keywords := make([]string, 0)
	if topK <= 0 {
		return keywords
	}

	counts := make(map[string]int)
	for _, tok := range e.tokenizer.Tokenize(text) {
		if IsStopWord(tok) {
			continue
		}
		if counts[tok] == 0 {
			keywords = append(keywords, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(keywords, func(i, j int) bool {
		return counts[keywords[i]] > counts[keywords[j]]
	})

	if len(keywords) > topK {
		keywords = keywords[:topK]
	}
	return keywords
}
