// Package story composes the full generation pipeline: safety screening,
// the generation strategy chain, narrative segmentation, illustration
// fan-out, and translation.
package story

import (
	"context"

	"github.com/sirupsen/logrus"

	"storyweaver/internal/domain"
	"storyweaver/internal/emotion"
	"storyweaver/internal/generate"
	"storyweaver/internal/segment"
)

// SafetyRedirect replaces story content whenever the input or the generated
// output trips the blocklist.
const SafetyRedirect = "Let's tell a different kind of story! How about one " +
	"with friendly animals, brave heroes, and a sprinkle of magic? " +
	"Tell me what you would like to hear."

// SafetyChecker screens arbitrary text for child-unsafe content.
type SafetyChecker interface {
	IsSafe(text string) bool
}

// Generator produces story text and never fails; the strategy chain
// satisfies this.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) string
}

// Orchestrator owns the sequential pipeline and its optional collaborators.
// Illustrator and translator may be nil; those stages are then skipped.
type Orchestrator struct {
	safety      SafetyChecker
	generator   Generator
	illustrator domain.Illustrator
	translator  domain.Translator
}

func New(safety SafetyChecker, generator Generator, illustrator domain.Illustrator, translator domain.Translator) *Orchestrator {
	return &Orchestrator{
		safety:      safety,
		generator:   generator,
		illustrator: illustrator,
		translator:  translator,
	}
}

// GenerateStory runs the pipeline for a plain request. The caller always
// receives a StoryResult; safety rejections surface as the fixed redirect
// message, never as an error.
func (o *Orchestrator) GenerateStory(ctx context.Context, prompt string, history []domain.ConversationTurn, theme string, storyLength int, language string) domain.StoryResult {
	req := domain.GenerationRequest{
		Prompt:          prompt,
		History:         history,
		Theme:           theme,
		TargetWordCount: generate.WordCountForLength(storyLength),
		Language:        language,
	}
	return o.run(ctx, req, nil)
}

// GenerateEmotionAwareStory additionally maps the detected emotion to a tone
// and thematic elements woven into the prompt, and records the mapping in
// the result's EmotionContext.
func (o *Orchestrator) GenerateEmotionAwareStory(ctx context.Context, prompt string, history []domain.ConversationTurn, theme string, storyLength int, language, detectedEmotion string, prefs *domain.UserPreferences) domain.StoryResult {
	tone := emotion.Map(detectedEmotion)
	req := domain.GenerationRequest{
		Prompt:          prompt,
		History:         history,
		Theme:           theme,
		TargetWordCount: generate.WordCountForLength(storyLength),
		Language:        language,
		Tone:            tone.Tone,
		ThemeElements:   tone.ThemeElements,
		Preferences:     prefs,
	}
	ec := &domain.EmotionContext{
		Emotion:       detectedEmotion,
		Tone:          tone.Tone,
		ThemeElements: tone.ThemeElements,
	}
	return o.run(ctx, req, ec)
}

func (o *Orchestrator) run(ctx context.Context, req domain.GenerationRequest, ec *domain.EmotionContext) domain.StoryResult {
	if !o.safety.IsSafe(req.Prompt) {
		logrus.WithField("theme", req.Theme).Info("input rejected by safety filter")
		return o.redirect(ctx, req.Language, ec)
	}

	text := o.generator.Generate(ctx, req)
	if !o.safety.IsSafe(text) {
		logrus.WithField("theme", req.Theme).Info("generated output rejected by safety filter")
		return o.redirect(ctx, req.Language, ec)
	}

	parts := segment.Split(text)

	var images map[string][]byte
	if o.illustrator != nil {
		images = o.illustrator.Illustrate(ctx, parts, req.Tone)
	}

	text = o.translate(ctx, text, req.Language)
	parts.Beginning = o.translate(ctx, parts.Beginning, req.Language)
	parts.Middle = o.translate(ctx, parts.Middle, req.Language)
	parts.End = o.translate(ctx, parts.End, req.Language)

	return domain.StoryResult{
		Text:           text,
		Parts:          parts,
		Images:         images,
		EmotionContext: ec,
	}
}

func (o *Orchestrator) redirect(ctx context.Context, language string, ec *domain.EmotionContext) domain.StoryResult {
	msg := o.translate(ctx, SafetyRedirect, language)
	return domain.StoryResult{
		Text: msg,
		Parts: domain.StoryParts{
			Beginning: msg,
			Middle:    msg,
			End:       msg,
		},
		EmotionContext: ec,
	}
}

func (o *Orchestrator) translate(ctx context.Context, text, language string) string {
	if o.translator == nil {
		return text
	}
	return o.translator.Translate(ctx, text, language)
}
