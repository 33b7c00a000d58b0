// Package embedding provides text embedders behind the domain.Embedder
// interface: a remote OpenAI-compatible client and a local TF-IDF fallback.
package embedding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// OpenAIClient talks to an OpenAI-compatible /embeddings endpoint. It also
// understands the Ollama-native response shape, so a local Ollama server can
// stand in for the remote provider.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	dimension  int
	client     *http.Client
	maxRetries int
}

// OpenAIConfig configures the OpenAI-compatible embeddings client.
type OpenAIConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewOpenAIClient creates an embeddings client. A missing API key is a
// configuration error: the theme index subsystem cannot run half-initialized.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &OpenAIClient{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		client:     &http.Client{Timeout: t},
		maxRetries: 3,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *OpenAIClient) Name() string { return "openai" }

// Prepare is a no-op for remote embedding; the dimension is learned lazily
// from the first response.
func (c *OpenAIClient) Prepare(corpus []string) error { return nil }

// Dimension returns the dimensionality of the produced embedding vectors.
func (c *OpenAIClient) Dimension() int { return c.dimension }

// Embed returns an embedding vector for the given text, retrying transient
// provider failures with exponential backoff.
func (c *OpenAIClient) Embed(text string) ([]float64, error) {
	url := fmt.Sprintf("%s/embeddings", c.baseURL)
	body, _ := json.Marshal(struct {
		Input string `json:"input"`
		Model string `json:"model"`
	}{Input: text, Model: c.model})

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay(attempt))
		}
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		payload, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("embeddings request failed: %s", resp.Status)
			continue
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
		}
		vec, err := decodeEmbedding(payload)
		if err != nil {
			lastErr = err
			continue
		}
		if c.dimension == 0 {
			c.dimension = len(vec)
		}
		return vec, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no embedding returned")
	}
	return nil, lastErr
}

func decodeEmbedding(payload []byte) ([]float64, error) {
	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil &&
		len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
		return openaiOut.Data[0].Embedding, nil
	}
	var ollamaOut struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil && len(ollamaOut.Embedding) > 0 {
		return ollamaOut.Embedding, nil
	}
	return nil, errors.New("no embedding in response")
}

func retryDelay(attempt int) time.Duration {
	base := 200 * time.Millisecond
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
