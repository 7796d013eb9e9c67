package provider

import (
	"context"
)

// OllamaProvider calls the Ollama generate endpoint without streaming.
type OllamaProvider struct {
	BaseURL     string
	Model       string
	Temperature float64
}

type ollamaRequest struct {
	Model   string             `json:"model"`
	Prompt  string             `json:"prompt"`
	Stream  bool               `json:"stream"`
	Options map[string]float64 `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434/api/generate"
	}
	return &OllamaProvider{
		BaseURL: baseURL,
		Model:   model,
	}
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

func (p *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	req := ollamaRequest{Model: p.Model, Prompt: prompt}
	if p.Temperature > 0 {
		req.Options = map[string]float64{"temperature": p.Temperature}
	}

	var resp ollamaResponse
	if err := postJSON(ctx, p.Name(), p.BaseURL, nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}
