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
	"strings"
	"time"
)

// HuggingFace is the secondary generation provider, speaking the hosted
// inference API protocol. Text-completion models echo the prompt and may
// stop mid-thought, so responses are cleaned up before they are accepted.
type HuggingFace struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

// NewHuggingFace creates the secondary provider client from settings.
func NewHuggingFace(s ProviderSettings) *HuggingFace {
	if s.BaseURL == "" {
		s.BaseURL = "https://api-inference.huggingface.co"
	}
	if s.Model == "" {
		s.Model = "gpt2"
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.Temperature == 0 {
		s.Temperature = 0.8
	}
	return &HuggingFace{
		baseURL:     s.BaseURL,
		apiKey:      os.Getenv(s.APIKeyEnv),
		model:       s.Model,
		temperature: s.Temperature,
		client:      &http.Client{Timeout: s.Timeout},
	}
}

// Name returns the provider identifier.
func (h *HuggingFace) Name() string { return "huggingface" }

// Available reports whether the provider has a credential.
func (h *HuggingFace) Available() bool { return h.apiKey != "" }

type hfParameters struct {
	MaxNewTokens      int     `json:"max_new_tokens"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	DoSample          bool    `json:"do_sample"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

// Generate sends one generation call and returns the cleaned-up continuation.
func (h *HuggingFace) Generate(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	if !h.Available() {
		return "", errors.New("huggingface provider unavailable: no API token")
	}
	fullPrompt := system + "\n\n" + prompt
	body, err := json.Marshal(hfRequest{
		Inputs: fullPrompt,
		Parameters: hfParameters{
			MaxNewTokens:      maxTokens,
			Temperature:       h.temperature,
			TopP:              0.95,
			RepetitionPenalty: 1.2,
			DoSample:          true,
		},
	})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/models/%s", h.baseURL, h.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("huggingface request: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("huggingface read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("huggingface status %s: %s", resp.Status, truncate(string(payload), 200))
	}
	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("huggingface decode response: %w", err)
	}
	if len(out) == 0 {
		return "", errors.New("huggingface returned no generations")
	}
	text := cleanCompletion(out[0].GeneratedText, fullPrompt)
	if text == "" {
		return "", errors.New("huggingface returned empty text")
	}
	return text, nil
}

// cleanCompletion removes the echoed prompt and guarantees the segment ends
// on an inviting note.
func cleanCompletion(text, prompt string) string {
	text = strings.TrimSpace(strings.Replace(text, prompt, "", 1))
	if text == "" {
		return ""
	}
	if !strings.HasSuffix(text, "?") && !strings.HasSuffix(text, "!") {
		text += " What do you think happens next?"
	}
	return text
}
