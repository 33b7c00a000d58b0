package domain

import "context"

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// Chunker splits raw corpus text into passages suitable for retrieval indexing.
type Chunker interface {
	Chunk(rawText, theme string) []Passage
}

// Fetcher retrieves raw reference text for a theme from remote sources.
// It never fails outright; an empty corpus is reported via a sentinel string.
type Fetcher interface {
	Fetch(ctx context.Context, theme string) string
}

// Retriever returns the top-k passages most similar to the query,
// restricted to a single theme's index.
type Retriever interface {
	Retrieve(ctx context.Context, theme, query string, k int) ([]SearchResult, error)
}

// Strategy is one tier of the generation fallback chain. A strategy either
// produces a usable story continuation or fails; it never falls back itself.
type Strategy interface {
	Name() string
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// Illustrator produces at most one image per narrative part. Parts whose
// request failed are absent from the returned map.
type Illustrator interface {
	Illustrate(ctx context.Context, parts StoryParts, toneContext string) map[string][]byte
}

// Translator renders text in the target language, returning the input
// unchanged for the default language or on provider failure.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) string
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
