package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a model reply contains no JSON value.
var ErrNoJSON = errors.New("no JSON found in model response")

// ParseRootCause decodes the first JSON object in a model reply.
func ParseRootCause(text string) (*RootCause, error) {
	raw, err := extractJSON(text, '{', '}')
	if err != nil {
		return nil, err
	}

	var rc RootCause
	if err := json.Unmarshal([]byte(raw), &rc); err != nil {
		return nil, fmt.Errorf("failed to decode root cause: %w", err)
	}
	if strings.TrimSpace(rc.RootCause) == "" {
		return nil, errors.New("root cause is empty")
	}
	rc.Confidence = clampConfidence(rc.Confidence)
	return &rc, nil
}

// ParseTestCases decodes the first JSON array in a model reply. Entries
// without a title are dropped.
func ParseTestCases(text string) ([]TestCase, error) {
	raw, err := extractJSON(text, '[', ']')
	if err != nil {
		return nil, err
	}

	var decoded []TestCase
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode test cases: %w", err)
	}

	cases := make([]TestCase, 0, len(decoded))
	for _, tc := range decoded {
		if strings.TrimSpace(tc.Title) == "" {
			continue
		}
		tc.Confidence = clampConfidence(tc.Confidence)
		cases = append(cases, tc)
	}
	if len(cases) == 0 {
		return nil, errors.New("no test cases in model response")
	}
	return cases, nil
}

// ParseEnhancement decodes the first JSON object in a model reply and keeps
// only the field that belongs to kind, which must be present.
func ParseEnhancement(text, kind string) (*Enhancement, error) {
	raw, err := extractJSON(text, '{', '}')
	if err != nil {
		return nil, err
	}

	var decoded Enhancement
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode enhancement: %w", err)
	}

	enh := &Enhancement{Suggestions: decoded.Suggestions}
	switch kind {
	case EnhanceSteps:
		for _, step := range decoded.Steps {
			if step = strings.TrimSpace(step); step != "" {
				enh.Steps = append(enh.Steps, step)
			}
		}
		if len(enh.Steps) == 0 {
			return nil, errors.New("no steps in model response")
		}
	case EnhanceAssertions:
		enh.ExpectedResult = strings.TrimSpace(decoded.ExpectedResult)
		if enh.ExpectedResult == "" {
			return nil, errors.New("no expected result in model response")
		}
	case EnhanceData:
		if len(decoded.TestData) == 0 {
			return nil, errors.New("no test data in model response")
		}
		enh.TestData = decoded.TestData
	default:
		return nil, fmt.Errorf("unsupported enhancement kind %q", kind)
	}
	if enh.Suggestions == nil {
		enh.Suggestions = []string{}
	}
	return enh, nil
}

// extractJSON returns the first balanced left...right span of text, skipping
// brackets inside JSON strings. Markdown fences and prose around it are
// ignored.
func extractJSON(text string, left, right byte) (string, error) {
	start := strings.IndexByte(text, left)
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case left:
			depth++
		case right:
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
