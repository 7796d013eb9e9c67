package engine

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/testdesk/backend/internal/bug"
	"github.com/testdesk/backend/internal/provider"
)

// Analysis sources
const (
	SourceLLM   = "llm"
	SourceRules = "rules"
)

// Analysis is the root cause report for a bug.
type Analysis struct {
	BugID string `json:"bug_id"`
	provider.RootCause
	Source      string           `json:"source"`
	SimilarBugs []bug.SimilarBug `json:"similar_bugs,omitempty"`
	AnalyzedAt  time.Time        `json:"analyzed_at"`
}

type rootCauseRule struct {
	category  string
	rootCause string
	phrases   []string // matched as substrings
	words     []string // matched as whole words
}

// Checked in order; the first hit wins.
var rootCauseRules = []rootCauseRule{
	{
		category:  "stability",
		rootCause: "Application crash, likely a memory leak or a null pointer dereference",
		phrases:   []string{"崩溃"},
		words:     []string{"crash", "crashes", "crashed", "crashing"},
	},
	{
		category:  "performance",
		rootCause: "Performance problem, likely an inefficient algorithm or improper resource usage",
		phrases:   []string{"性能"},
		words:     []string{"performance"},
	},
	{
		category:  "ui",
		rootCause: "Display problem, likely a CSS style or layout issue",
		phrases:   []string{"界面"},
		words:     []string{"ui"},
	},
}

var ruleSuggestions = []string{
	"Check the related code logic",
	"Reproduce the bug scenario",
	"Analyze the log output",
	"Add unit tests",
}

const ruleConfidence = 0.6

// AnalyzeRootCause explains a bug with the configured LLM and falls back to
// keyword rules when no model is configured or its answer is unusable.
// includeSimilar also runs FindSimilarBugs with the default settings.
func (e *Engine) AnalyzeRootCause(ctx context.Context, bugID string, includeSimilar bool) (*Analysis, error) {
	b, err := e.Storage.Get(bugID)
	if err != nil {
		return nil, err
	}

	var similar []bug.SimilarBug
	if includeSimilar {
		similar, err = e.FindSimilarBugs(ctx, bugID, 0, 0)
		if err != nil {
			return nil, err
		}
	}

	analysis := &Analysis{
		BugID:       b.ID,
		SimilarBugs: similar,
		AnalyzedAt:  time.Now().UTC(),
	}

	if rc, ok := e.analyzeWithLLM(ctx, b, similar); ok {
		analysis.RootCause = *rc
		analysis.Source = SourceLLM
		return analysis, nil
	}

	analysis.RootCause = analyzeByRules(b)
	analysis.Source = SourceRules
	return analysis, nil
}

func (e *Engine) analyzeWithLLM(ctx context.Context, b *bug.Bug, similar []bug.SimilarBug) (*provider.RootCause, bool) {
	if e.LLM == nil {
		return nil, false
	}

	ctx, cancel := e.llmContext(ctx)
	defer cancel()

	log := e.Logger.WithField("bug_id", b.ID)
	reply, err := e.LLM.Generate(ctx, provider.BuildRootCausePrompt(b, similar))
	if err != nil {
		log.WithError(err).Warn("LLM root cause analysis failed, using rules")
		return nil, false
	}
	rc, err := provider.ParseRootCause(reply)
	if err != nil {
		log.WithError(err).Warn("Unusable LLM root cause answer, using rules")
		return nil, false
	}
	return rc, true
}

func (e *Engine) llmContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Config.LLM.Timeout > 0 {
		return context.WithTimeout(ctx, e.Config.LLM.Timeout)
	}
	return context.WithCancel(ctx)
}

func analyzeByRules(b *bug.Bug) provider.RootCause {
	text := strings.ToLower(b.Document().Text())
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}

	rc := provider.RootCause{
		RootCause:   "Functional logic problem, the code path needs further analysis",
		Category:    "functional",
		Confidence:  ruleConfidence,
		Suggestions: append([]string(nil), ruleSuggestions...),
	}
	for _, rule := range rootCauseRules {
		if rule.matches(text, words) {
			rc.RootCause = rule.rootCause
			rc.Category = rule.category
			break
		}
	}
	return rc
}

func (r rootCauseRule) matches(text string, words map[string]bool) bool {
	for _, p := range r.phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	for _, w := range r.words {
		if words[w] {
			return true
		}
	}
	return false
}
