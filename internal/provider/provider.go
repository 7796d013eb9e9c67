package provider

import (
	"context"
	"strings"

	"github.com/testdesk/backend/internal/config"
)

// LLMProvider defines the interface for AI model integration
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// New creates the provider named by cfg.Provider. "openai" selects the OpenAI
// chat API, "none" (or an empty name) disables the model and returns nil, and
// anything else talks to Ollama.
func New(cfg config.LLMConfig) LLMProvider {
	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil
	case "openai":
		p := NewOpenAIProvider(cfg.BaseURL, cfg.Model, cfg.APIKey)
		p.Temperature = cfg.Temperature
		return p
	default:
		p := NewOllamaProvider(cfg.BaseURL, cfg.Model)
		p.Temperature = cfg.Temperature
		return p
	}
}

// RootCause is a model's (or the rule fallback's) explanation of a bug.
type RootCause struct {
	RootCause   string   `json:"root_cause"`
	Category    string   `json:"category"`
	Confidence  float64  `json:"confidence"`
	Suggestions []string `json:"suggestions"`
}

// TestCaseRequest describes the test cases to generate.
type TestCaseRequest struct {
	ProjectID   string `json:"project_id"`
	Requirement string `json:"requirement"`
	TestType    string `json:"test_type"`
	Priority    string `json:"priority"`
	Count       int    `json:"count"`
	// Context is free text about the project or module under test.
	Context string `json:"context,omitempty"`
}

// TestCase is a generated test case.
type TestCase struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Steps          []string `json:"steps"`
	ExpectedResult string   `json:"expected_result"`
	Confidence     float64  `json:"confidence"`
}

// Test case enhancement kinds.
const (
	EnhanceSteps      = "steps"
	EnhanceAssertions = "assertions"
	EnhanceData       = "data"
)

// EnhanceRequest asks for one part of an existing test case to be improved.
type EnhanceRequest struct {
	TestCase TestCase `json:"test_case"`
	Kind     string   `json:"kind"`
	Context  string   `json:"context,omitempty"`
}

// Enhancement is the improved part of a test case. Only the field matching
// the requested kind is set.
type Enhancement struct {
	Steps          []string               `json:"steps,omitempty"`
	ExpectedResult string                 `json:"expected_result,omitempty"`
	TestData       map[string]interface{} `json:"test_data,omitempty"`
	Suggestions    []string               `json:"suggestions"`
}
