// Package segment splits generated stories into beginning, middle, and end
// parts for per-part illustration.
package segment

import (
	"regexp"
	"strings"

	"storyweaver/internal/domain"
)

var sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// Split partitions the story's sentences into three contiguous, roughly
// equal groups. If there are fewer than three sentences, all parts collapse
// to the full text: callers never receive an empty part.
func Split(storyText string) domain.StoryParts {
	text := strings.TrimSpace(storyText)
	sentences := sentenceRe.FindAllString(text, -1)
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}
	if len(sentences) < 3 {
		return domain.StoryParts{Beginning: text, Middle: text, End: text}
	}
	third := len(sentences) / 3
	rem := len(sentences) % 3
	// Spread the remainder across the leading groups.
	sizes := [3]int{third, third, third}
	for i := 0; i < rem; i++ {
		sizes[i]++
	}
	b := strings.Join(sentences[:sizes[0]], " ")
	m := strings.Join(sentences[sizes[0]:sizes[0]+sizes[1]], " ")
	e := strings.Join(sentences[sizes[0]+sizes[1]:], " ")
	return domain.StoryParts{Beginning: b, Middle: m, End: e}
}
