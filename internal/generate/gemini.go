package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Gemini is the primary generation provider, speaking the generateContent
// protocol. A missing credential makes it unavailable rather than broken:
// the fallback chain simply skips the tier.
type Gemini struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

// NewGemini creates the primary provider client from settings. The API key
// is read from the configured environment variable.
func NewGemini(s ProviderSettings) *Gemini {
	if s.BaseURL == "" {
		s.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if s.Model == "" {
		s.Model = "gemini-1.5-pro"
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.Temperature == 0 {
		s.Temperature = 0.8
	}
	return &Gemini{
		baseURL:     s.BaseURL,
		apiKey:      os.Getenv(s.APIKeyEnv),
		model:       s.Model,
		temperature: s.Temperature,
		client:      &http.Client{Timeout: s.Timeout},
	}
}

// Name returns the provider identifier.
func (g *Gemini) Name() string { return "gemini" }

// Available reports whether the provider has a credential.
func (g *Gemini) Available() bool { return g.apiKey != "" }

type geminiRequest struct {
	SystemInstruction geminiContent   `json:"systemInstruction"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends one generation call and returns the produced text.
func (g *Gemini) Generate(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	if !g.Available() {
		return "", errors.New("gemini provider unavailable: no API key")
	}
	body, err := json.Marshal(geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: system}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenConfig{
			Temperature:     g.temperature,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: maxTokens,
		},
	})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini status %s: %s", resp.Status, truncate(string(payload), 200))
	}
	var out geminiResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("gemini decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", errors.New("gemini returned empty text")
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
