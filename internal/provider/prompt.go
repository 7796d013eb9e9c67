package provider

import (
	"fmt"
	"strings"

	"github.com/testdesk/backend/internal/bug"
)

// BuildRootCausePrompt asks for a JSON root cause analysis of b. Known
// duplicates are listed so the model can reuse their history.
func BuildRootCausePrompt(b *bug.Bug, similar []bug.SimilarBug) string {
	doc := b.Document()

	var sb strings.Builder
	sb.WriteString("Analyze the root cause of the following bug report.\n\n")
	sb.WriteString("BUG:\n")
	fmt.Fprintf(&sb, "Title: %s\n", doc.Title)
	fmt.Fprintf(&sb, "Severity: %s\n", b.Severity)
	fmt.Fprintf(&sb, "Status: %s\n", b.Status)
	fmt.Fprintf(&sb, "Description: %s\n", doc.Description)

	if len(similar) > 0 {
		sb.WriteString("\nSIMILAR BUGS:\n")
		for _, s := range similar {
			fmt.Fprintf(&sb, "- %s (status %s, similarity %.2f)\n", s.Title, s.Status, s.Similarity)
		}
	}

	sb.WriteString("\nReply with a single JSON object and nothing else:\n")
	sb.WriteString(`{"root_cause": "...", "category": "stability|performance|ui|functional", "confidence": 0.0, "suggestions": ["..."]}`)
	sb.WriteString("\n")
	return sb.String()
}

// BuildTestCasePrompt asks for req.Count test cases as a JSON array.
func BuildTestCasePrompt(req TestCaseRequest) string {
	context := req.Context
	if context == "" {
		context = "No specific context available."
	}

	return fmt.Sprintf("Generate %d %s test cases with %s priority for the requirement below.\n\n", req.Count, req.TestType, req.Priority) +
		"PROJECT CONTEXT:\n" + context + "\n\n" +
		"REQUIREMENT:\n" + req.Requirement + "\n\n" +
		"Reply with a JSON array and nothing else. Each element has the fields\n" +
		"title, description, steps (list of strings), expected_result and confidence (0-1):\n" +
		`[{"title": "...", "description": "...", "steps": ["...", "..."], "expected_result": "...", "confidence": 0.9}]` + "\n"
}

var enhanceInstructions = map[string]struct {
	task  string
	reply string
}{
	EnhanceSteps: {
		task:  "Rewrite the steps so they are complete and repeatable. Add preconditions, missing actions and a cleanup step.",
		reply: `{"steps": ["...", "..."], "suggestions": ["..."]}`,
	},
	EnhanceAssertions: {
		task:  "Extend the expected result with concrete verification points.",
		reply: `{"expected_result": "...", "suggestions": ["..."]}`,
	},
	EnhanceData: {
		task:  "Propose test data covering valid, invalid and boundary inputs.",
		reply: `{"test_data": {"valid_data": {}, "invalid_data": {}, "boundary_data": {}}, "suggestions": ["..."]}`,
	},
}

// BuildEnhancePrompt asks the model to improve the part of req.TestCase named
// by req.Kind. An unknown kind gets the steps instructions.
func BuildEnhancePrompt(req EnhanceRequest) string {
	instr, ok := enhanceInstructions[req.Kind]
	if !ok {
		instr = enhanceInstructions[EnhanceSteps]
	}
	context := req.Context
	if context == "" {
		context = "No specific context available."
	}
	tc := req.TestCase

	var sb strings.Builder
	sb.WriteString("Improve the following test case. " + instr.task + "\n\n")
	sb.WriteString("PROJECT CONTEXT:\n" + context + "\n\n")
	sb.WriteString("TEST CASE:\n")
	fmt.Fprintf(&sb, "Title: %s\n", tc.Title)
	fmt.Fprintf(&sb, "Description: %s\n", tc.Description)
	sb.WriteString("Steps:\n")
	for i, step := range tc.Steps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	fmt.Fprintf(&sb, "Expected result: %s\n", tc.ExpectedResult)

	sb.WriteString("\nReply with a single JSON object and nothing else:\n")
	sb.WriteString(instr.reply)
	sb.WriteString("\n")
	return sb.String()
}
