package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/testdesk/backend/internal/provider"
)

const defaultTestCaseCount = 5

// GeneratedTestCases is the outcome of a generation request.
type GeneratedTestCases struct {
	Source    string              `json:"source"`
	TestCases []provider.TestCase `json:"test_cases"`
}

type testCaseTemplate struct {
	title          string
	description    string
	steps          []string
	expectedResult string
}

var testCaseTemplates = map[string][]testCaseTemplate{
	"functional": {{
		title:          "Functional test - %s",
		description:    "Verify the basic function of %s",
		steps:          []string{"Open the application", "Perform the operation", "Verify the result"},
		expectedResult: "The function works as expected",
	}},
	"ui": {{
		title:          "UI test - %s",
		description:    "Verify the display of %s",
		steps:          []string{"Open the page", "Check the interface elements", "Verify the layout"},
		expectedResult: "The interface is displayed correctly",
	}},
	"api": {{
		title:          "API test - %s",
		description:    "Verify the API of %s",
		steps:          []string{"Send the request", "Check the response", "Verify the data"},
		expectedResult: "The API returns the correct result",
	}},
}

const templateConfidence = 0.7

// GenerateTestCases drafts test cases for a requirement with the configured
// LLM, or from fixed templates when the model is missing or fails.
func (e *Engine) GenerateTestCases(ctx context.Context, req provider.TestCaseRequest) (*GeneratedTestCases, error) {
	req.Requirement = strings.TrimSpace(req.Requirement)
	if req.Requirement == "" {
		return nil, fmt.Errorf("%w: requirement is required", ErrInvalidInput)
	}
	if req.Count <= 0 {
		req.Count = defaultTestCaseCount
	}
	if req.TestType == "" {
		req.TestType = "functional"
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}

	if cases, ok := e.generateWithLLM(ctx, req); ok {
		return &GeneratedTestCases{Source: SourceLLM, TestCases: cases}, nil
	}
	return &GeneratedTestCases{Source: SourceRules, TestCases: generateFromTemplates(req)}, nil
}

func (e *Engine) generateWithLLM(ctx context.Context, req provider.TestCaseRequest) ([]provider.TestCase, bool) {
	if e.LLM == nil {
		return nil, false
	}

	ctx, cancel := e.llmContext(ctx)
	defer cancel()

	reply, err := e.LLM.Generate(ctx, provider.BuildTestCasePrompt(req))
	if err != nil {
		e.Logger.WithError(err).Warn("LLM test case generation failed, using templates")
		return nil, false
	}
	cases, err := provider.ParseTestCases(reply)
	if err != nil {
		e.Logger.WithError(err).Warn("Unusable LLM test cases, using templates")
		return nil, false
	}
	if len(cases) > req.Count {
		cases = cases[:req.Count]
	}
	return cases, true
}

// generateFromTemplates cycles through the templates of the test type, at
// most three rounds.
func generateFromTemplates(req provider.TestCaseRequest) []provider.TestCase {
	templates, ok := testCaseTemplates[req.TestType]
	if !ok {
		templates = testCaseTemplates["functional"]
	}

	n := min(req.Count, len(templates)*3)
	cases := make([]provider.TestCase, 0, n)
	for i := 0; i < n; i++ {
		tmpl := templates[i%len(templates)]
		cases = append(cases, provider.TestCase{
			Title:          fmt.Sprintf(tmpl.title, req.Requirement) + fmt.Sprintf(" - case %d", i+1),
			Description:    fmt.Sprintf(tmpl.description, req.Requirement),
			Steps:          append([]string(nil), tmpl.steps...),
			ExpectedResult: tmpl.expectedResult,
			Confidence:     templateConfidence,
		})
	}
	return cases
}
