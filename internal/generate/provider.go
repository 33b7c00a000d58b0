package generate

import (
	"context"
	"time"
)

// Provider is a remote text generation backend. Generate must validate the
// response shape and report an error for anything unusable; fallback is the
// chain's responsibility.
type Provider interface {
	Name() string
	Available() bool
	Generate(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

// ProviderSettings configures one remote generation provider.
type ProviderSettings struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	Timeout     time.Duration
	Temperature float64
}
