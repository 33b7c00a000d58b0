// Package illustrate requests one illustration per narrative part from an
// external image generation service.
package illustrate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"storyweaver/internal/domain"
)

// excerptLimit bounds how much part text goes into an image prompt.
const excerptLimit = 200

// Client fans out one image request per narrative part. Each request is
// independent: a failed part is dropped from the result, never aborting its
// siblings or the story response. No retries within one call.
type Client struct {
	url            string
	inferenceSteps int
	guidanceScale  float64
	client         *http.Client
}

// Config configures the image generation client.
type Config struct {
	URL            string
	Timeout        time.Duration
	InferenceSteps int
	GuidanceScale  float64
}

// New creates an illustration client for the configured service.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.InferenceSteps <= 0 {
		cfg.InferenceSteps = 30
	}
	if cfg.GuidanceScale <= 0 {
		cfg.GuidanceScale = 1.1
	}
	return &Client{
		url:            cfg.URL,
		inferenceSteps: cfg.InferenceSteps,
		guidanceScale:  cfg.GuidanceScale,
		client:         &http.Client{Timeout: cfg.Timeout},
	}
}

// Illustrate requests an image for each part concurrently and returns a
// sparse map keyed by part name. Parts whose request failed are absent.
func (c *Client) Illustrate(ctx context.Context, parts domain.StoryParts, toneContext string) map[string][]byte {
	named := []struct {
		name string
		text string
	}{
		{domain.PartBeginning, parts.Beginning},
		{domain.PartMiddle, parts.Middle},
		{domain.PartEnd, parts.End},
	}

	var mu sync.Mutex
	images := make(map[string][]byte)
	g, gctx := errgroup.WithContext(ctx)
	for _, part := range named {
		part := part
		g.Go(func() error {
			img, err := c.generate(gctx, part.text, toneContext)
			if err != nil {
				logrus.WithField("part", part.name).WithError(err).
					Warn("illustration dropped for part")
				return nil // sibling parts keep going
			}
			mu.Lock()
			images[part.name] = img
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return images
}

type generateRequest struct {
	Prompt            string  `json:"prompt"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
}

func (c *Client) generate(ctx context.Context, partText, toneContext string) ([]byte, error) {
	prompt := "Children's story illustration"
	if toneContext != "" {
		prompt += ", " + toneContext
	}
	prompt += ": " + truncate(partText, excerptLimit)

	body, err := json.Marshal(generateRequest{
		Prompt:            prompt,
		NumInferenceSteps: c.inferenceSteps,
		GuidanceScale:     c.guidanceScale,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image service status %s", resp.Status)
	}
	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("image service returned empty payload")
	}
	return img, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
