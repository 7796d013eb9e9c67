package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/testdesk/backend/internal/provider"
)

// EnhancedTestCase is a test case with one part improved.
type EnhancedTestCase struct {
	Source      string                 `json:"source"`
	Kind        string                 `json:"kind"`
	TestCase    provider.TestCase      `json:"test_case"`
	TestData    map[string]interface{} `json:"test_data,omitempty"`
	Suggestions []string               `json:"suggestions"`
}

const (
	preconditionStep = "Precondition: make sure the system is running normally"
	cleanupStep      = "Cleanup: restore the test environment"
)

var verificationPoints = []string{
	"Check the response time",
	"Verify data integrity",
	"Confirm error handling",
}

// EnhanceTestCase improves the steps, assertions or test data of a test case
// with the configured LLM, or with fixed rules when the model is missing or
// fails. An empty kind means steps.
func (e *Engine) EnhanceTestCase(ctx context.Context, req provider.EnhanceRequest) (*EnhancedTestCase, error) {
	req.Kind = strings.ToLower(strings.TrimSpace(req.Kind))
	if req.Kind == "" {
		req.Kind = provider.EnhanceSteps
	}
	switch req.Kind {
	case provider.EnhanceSteps, provider.EnhanceAssertions, provider.EnhanceData:
	default:
		return nil, fmt.Errorf("%w: unsupported enhancement kind %q", ErrInvalidInput, req.Kind)
	}
	if strings.TrimSpace(req.TestCase.Title) == "" {
		return nil, fmt.Errorf("%w: test case title is required", ErrInvalidInput)
	}

	source := SourceLLM
	enh, ok := e.enhanceWithLLM(ctx, req)
	if !ok {
		source = SourceRules
		enh = enhanceByRules(req.TestCase, req.Kind)
	}

	tc := req.TestCase
	tc.Steps = append([]string(nil), tc.Steps...)
	switch req.Kind {
	case provider.EnhanceSteps:
		tc.Steps = enh.Steps
	case provider.EnhanceAssertions:
		tc.ExpectedResult = enh.ExpectedResult
	}
	return &EnhancedTestCase{
		Source:      source,
		Kind:        req.Kind,
		TestCase:    tc,
		TestData:    enh.TestData,
		Suggestions: enh.Suggestions,
	}, nil
}

func (e *Engine) enhanceWithLLM(ctx context.Context, req provider.EnhanceRequest) (*provider.Enhancement, bool) {
	if e.LLM == nil {
		return nil, false
	}

	ctx, cancel := e.llmContext(ctx)
	defer cancel()

	log := e.Logger.WithField("kind", req.Kind)
	reply, err := e.LLM.Generate(ctx, provider.BuildEnhancePrompt(req))
	if err != nil {
		log.WithError(err).Warn("LLM test case enhancement failed, using rules")
		return nil, false
	}
	enh, err := provider.ParseEnhancement(reply, req.Kind)
	if err != nil {
		log.WithError(err).Warn("Unusable LLM enhancement, using rules")
		return nil, false
	}
	return enh, true
}

func enhanceByRules(tc provider.TestCase, kind string) *provider.Enhancement {
	enh := &provider.Enhancement{}
	switch kind {
	case provider.EnhanceSteps:
		steps := append([]string(nil), tc.Steps...)
		if !anyStepContains(steps, "precondition", "前置") {
			steps = append([]string{preconditionStep}, steps...)
		}
		if !anyStepContains(steps, "cleanup", "清理") {
			steps = append(steps, cleanupStep)
		}
		enh.Steps = steps
		enh.Suggestions = []string{"Added precondition and cleanup steps"}
	case provider.EnhanceAssertions:
		var sb strings.Builder
		if tc.ExpectedResult != "" {
			sb.WriteString(tc.ExpectedResult + "\n\n")
		}
		sb.WriteString("Additional verification points:")
		for _, p := range verificationPoints {
			sb.WriteString("\n- " + p)
		}
		enh.ExpectedResult = sb.String()
		enh.Suggestions = []string{"Added detailed verification points"}
	case provider.EnhanceData:
		enh.TestData = map[string]interface{}{
			"valid_data":    map[string]interface{}{"example": "valid_value"},
			"invalid_data":  map[string]interface{}{"example": "invalid_value"},
			"boundary_data": map[string]interface{}{"example": "boundary_value"},
		}
		enh.Suggestions = []string{"Added a test data set"}
	}
	return enh
}

func anyStepContains(steps []string, markers ...string) bool {
	for _, step := range steps {
		lower := strings.ToLower(step)
		for _, m := range markers {
			if strings.Contains(lower, m) {
				return true
			}
		}
	}
	return false
}
