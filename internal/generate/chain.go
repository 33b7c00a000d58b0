package generate

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"storyweaver/internal/domain"
)

// Chain tries generation strategies in strict order and returns the first
// non-empty result. Tier failures are caught and logged here; they never
// reach the caller. Add or reorder tiers by editing the strategy list.
type Chain struct {
	strategies []domain.Strategy
}

// NewChain creates a fallback chain over the given ordered strategies. The
// last strategy is expected to be unconditionally available (the template
// tier); the chain treats total exhaustion as an invariant violation.
func NewChain(strategies ...domain.Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Generate returns displayable story text. It never fails.
func (c *Chain) Generate(ctx context.Context, req domain.GenerationRequest) string {
	for _, s := range c.strategies {
		text, err := s.Generate(ctx, req)
		if err != nil {
			logrus.WithField("strategy", s.Name()).WithError(err).
				Warn("generation tier failed, trying next")
			continue
		}
		if strings.TrimSpace(text) == "" {
			logrus.WithField("strategy", s.Name()).
				Warn("generation tier returned empty text, trying next")
			continue
		}
		logrus.WithField("strategy", s.Name()).Debug("generation tier succeeded")
		return text
	}
	// The template tier cannot fail; reaching this point means the chain was
	// assembled without it.
	logrus.Error("all generation tiers exhausted; falling back to built-in template")
	text, _ := Template{}.Generate(ctx, req)
	return text
}
