package provider

import (
	"context"
	"errors"
	"net/http"
)

const systemPrompt = "You are a senior QA engineer. You write precise test cases and diagnose bug reports."

// OpenAIProvider calls an OpenAI compatible chat completions endpoint.
type OpenAIProvider struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewOpenAIProvider(baseURL, model, apiKey string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1/chat/completions"
	}
	return &OpenAIProvider{
		BaseURL: baseURL,
		Model:   model,
		APIKey:  apiKey,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model: p.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: p.Temperature,
	}

	header := http.Header{}
	if p.APIKey != "" {
		header.Set("Authorization", "Bearer "+p.APIKey)
	}

	var resp chatResponse
	if err := postJSON(ctx, p.Name(), p.BaseURL, header, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned from openai")
	}
	return resp.Choices[0].Message.Content, nil
}
