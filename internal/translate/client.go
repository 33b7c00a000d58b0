// Package translate renders story text in a requested language. Translation
// is a presentation enhancement: any failure returns the original text.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultLanguage needs no translation.
const DefaultLanguage = "en"

// Client talks to a JSON translation service accepting
// {"q": ..., "source": "auto", "target": ...} and answering
// {"translatedText": ...}.
type Client struct {
	url    string
	client *http.Client
}

// New creates a translation client for the configured service URL.
func New(url string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{url: url, client: &http.Client{Timeout: timeout}}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate renders text in targetLanguage. It is the identity for the
// default language and for any provider failure.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) string {
	target := strings.ToLower(strings.TrimSpace(targetLanguage))
	if target == "" || target == DefaultLanguage {
		return text
	}
	translated, err := c.call(ctx, text, target)
	if err != nil {
		logrus.WithField("target", target).WithError(err).
			Warn("translation failed, returning original text")
		return text
	}
	return translated
}

func (c *Client) call(ctx context.Context, text, target string) (string, error) {
	body, err := json.Marshal(translateRequest{Q: text, Source: "auto", Target: target})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation status %s", resp.Status)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var out translateResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("decode translation: %w", err)
	}
	if out.TranslatedText == "" {
		return "", fmt.Errorf("empty translation")
	}
	return out.TranslatedText, nil
}
