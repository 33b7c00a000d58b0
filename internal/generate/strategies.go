package generate

import (
	"context"
	"fmt"
	"strings"

	"storyweaver/internal/domain"
)

// RAG is the retrieval-augmented tier: it grounds the generation call in
// passages retrieved from the active theme index. It fails when retrieval or
// the provider fails; the chain handles the fallback.
type RAG struct {
	retriever  domain.Retriever
	provider   Provider
	summarizer domain.Summarizer
	topK       int
}

// NewRAG creates the retrieval-augmented generation strategy.
func NewRAG(retriever domain.Retriever, provider Provider, summarizer domain.Summarizer, topK int) *RAG {
	if topK <= 0 {
		topK = 5
	}
	return &RAG{retriever: retriever, provider: provider, summarizer: summarizer, topK: topK}
}

// Name returns the strategy identifier.
func (s *RAG) Name() string { return "rag" }

// Generate retrieves theme passages and asks the provider for a grounded
// continuation.
func (s *RAG) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if !s.provider.Available() {
		return "", fmt.Errorf("%s provider unavailable", s.provider.Name())
	}
	results, err := s.retriever.Retrieve(ctx, req.Theme, req.Prompt, s.topK)
	if err != nil {
		return "", fmt.Errorf("retrieve passages: %w", err)
	}
	var ctxBlock strings.Builder
	for _, r := range results {
		ctxBlock.WriteString("- ")
		ctxBlock.WriteString(r.Passage.Content)
		ctxBlock.WriteString("\n")
	}
	prompt := BuildPrompt(req, strings.TrimRight(ctxBlock.String(), "\n"), s.summarizer)
	text, err := s.provider.Generate(ctx, SystemPrompt, prompt, tokenBudget(req))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Direct is the secondary tier: the same instructions with no retrieved
// context, against a different provider.
type Direct struct {
	provider   Provider
	summarizer domain.Summarizer
}

// NewDirect creates the context-free secondary strategy.
func NewDirect(provider Provider, summarizer domain.Summarizer) *Direct {
	return &Direct{provider: provider, summarizer: summarizer}
}

// Name returns the strategy identifier.
func (s *Direct) Name() string { return "direct" }

// Generate asks the provider for a continuation without retrieved context.
func (s *Direct) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if !s.provider.Available() {
		return "", fmt.Errorf("%s provider unavailable", s.provider.Name())
	}
	prompt := BuildPrompt(req, "", s.summarizer)
	text, err := s.provider.Generate(ctx, SystemPrompt, prompt, tokenBudget(req))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Template is the final tier: a deterministic narrative frame that echoes
// the child's input and always ends in an open question. It never fails, so
// the system is never silent even with every provider unreachable.
type Template struct{}

// Name returns the strategy identifier.
func (Template) Name() string { return "template" }

// Generate produces the fixed narrative frame.
func (Template) Generate(_ context.Context, req domain.GenerationRequest) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "Once upon a time, in a magical land far, far away, a gentle storyteller waited for an idea. What would you like the story to be about?", nil
	}
	if len(req.History) > 0 {
		return fmt.Sprintf("Continuing our story... %s What do you think happens next?", prompt), nil
	}
	return fmt.Sprintf("Once upon a time, in a magical land far, far away, there lived a friendly dragon who loved to tell stories. %s What kind of adventure would you like to hear about?", prompt), nil
}

func tokenBudget(req domain.GenerationRequest) int {
	if req.TargetWordCount > 0 {
		return req.TargetWordCount
	}
	return WordCountForLength(0)
}
