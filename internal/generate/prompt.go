// Package generate produces story continuations through an ordered chain of
// generation strategies backed by remote providers.
package generate

import (
	"fmt"
	"strings"

	"storyweaver/internal/domain"
)

// SystemPrompt is the storyteller instruction set shared by every remote
// generation tier.
const SystemPrompt = `You are a friendly, imaginative storyteller who creates engaging and age-appropriate stories for children.
Keep the language simple and vivid. Avoid any violent, scary, or inappropriate content.
Encourage curiosity, kindness, and creativity.
Always ensure the story is suitable for children aged 5 to 12.

When continuing a story:
1. Consider the previous story context carefully
2. Incorporate the child's input naturally into the story
3. Maintain consistency with previous events and characters
4. End with an engaging question that invites the child to continue the story`

// WordCountForLength maps a story-length tier to a target word count.
func WordCountForLength(storyLength int) int {
	switch storyLength {
	case 1:
		return 50
	case 3:
		return 150
	default:
		return 100
	}
}

// maxVerbatimTurns bounds how much history enters the prompt verbatim; older
// turns are condensed by the summarizer instead.
const maxVerbatimTurns = 8

// Transcript renders conversation history as alternating storyteller/child
// lines. When the history exceeds the verbatim budget and a summarizer is
// available, older turns are condensed into a single story-so-far line.
func Transcript(history []domain.ConversationTurn, sum domain.Summarizer) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Previous story context:\n")

	verbatim := history
	if len(history) > maxVerbatimTurns && sum != nil {
		older := history[:len(history)-maxVerbatimTurns]
		verbatim = history[len(history)-maxVerbatimTurns:]
		var olderText strings.Builder
		for _, turn := range older {
			olderText.WriteString(turn.Content)
			olderText.WriteString(" ")
		}
		if summary, err := sum.Summarize(olderText.String(), 3); err == nil && summary != "" {
			b.WriteString("The story so far: ")
			b.WriteString(summary)
			b.WriteString("\n")
		}
	}
	for _, turn := range verbatim {
		switch turn.Role {
		case domain.RoleAssistant:
			fmt.Fprintf(&b, "Storyteller: %s\n", turn.Content)
		case domain.RoleUser:
			fmt.Fprintf(&b, "Child: %s\n", turn.Content)
		}
	}
	return b.String()
}

// BuildPrompt assembles the user-facing prompt for a generation call.
// contextBlock carries retrieved reference passages and may be empty.
func BuildPrompt(req domain.GenerationRequest, contextBlock string, sum domain.Summarizer) string {
	var b strings.Builder
	if transcript := Transcript(req.History, sum); transcript != "" {
		b.WriteString(transcript)
		b.WriteString("\n")
	}
	if contextBlock != "" {
		b.WriteString("Use the following excerpts from reference stories to craft a unique and engaging story:\n")
		b.WriteString(contextBlock)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Theme: %s\n", req.Theme)
	if req.Tone != "" {
		fmt.Fprintf(&b, "Story tone: %s\n", req.Tone)
	}
	if req.ThemeElements != "" {
		fmt.Fprintf(&b, "Weave in elements such as: %s\n", req.ThemeElements)
	}
	writePreferences(&b, req.Preferences)
	fmt.Fprintf(&b, "Child's input: %s\n\n", req.Prompt)
	b.WriteString("Continue the story in a way that:\n")
	b.WriteString("1. Naturally incorporates the child's input\n")
	b.WriteString("2. Maintains consistency with previous events\n")
	b.WriteString("3. Keeps the story engaging and age-appropriate\n")
	b.WriteString("4. Ends with a question that invites the child to continue the story\n")
	fmt.Fprintf(&b, "5. Is approximately %d words long\n", req.TargetWordCount)
	return b.String()
}

func writePreferences(b *strings.Builder, prefs *domain.UserPreferences) {
	if prefs == nil {
		return
	}
	if prefs.Age != "" {
		fmt.Fprintf(b, "The child is %s years old.\n", prefs.Age)
	}
	if prefs.Genre != "" {
		fmt.Fprintf(b, "The child enjoys %s stories.\n", prefs.Genre)
	}
	if prefs.CharacterName != "" {
		fmt.Fprintf(b, "Feature a character named %s as a main figure.\n", prefs.CharacterName)
	}
	if prefs.UseMythology {
		b.WriteString("Draw on mythological figures accurately while keeping the story friendly.\n")
	}
	if prefs.UseCulturalContext {
		b.WriteString("Include gentle cultural context from the story's setting.\n")
	}
}
