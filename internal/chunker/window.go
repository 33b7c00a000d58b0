// Package chunker splits raw corpus text into overlapping passages.
package chunker

import (
	"strings"

	"storyweaver/internal/domain"
)

// WindowChunker splits text into fixed-size character windows with overlap,
// so no semantic unit is cut without context bleed into the adjacent chunk.
type WindowChunker struct {
	chunkSize int
	overlap   int
}

// NewWindowChunker creates a chunker with the given window size and overlap
// in characters. Invalid values fall back to 500/100.
func NewWindowChunker(chunkSize, overlap int) *WindowChunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 100
		if overlap >= chunkSize {
			overlap = chunkSize / 5
		}
	}
	return &WindowChunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits rawText into theme-tagged passages. Deterministic: the same
// text and theme always yield the same sequence.
func (c *WindowChunker) Chunk(rawText, theme string) []domain.Passage {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		return []domain.Passage{{Content: text, Theme: theme}}
	}
	step := c.chunkSize - c.overlap
	var passages []domain.Passage
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		content := strings.TrimSpace(string(runes[start:end]))
		if content != "" {
			passages = append(passages, domain.Passage{Content: content, Theme: theme})
		}
		if end == len(runes) {
			break
		}
	}
	return passages
}
