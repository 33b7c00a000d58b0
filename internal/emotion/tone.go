// Package emotion maps a detected emotional state to tone and theme
// modifiers for the generation prompt.
package emotion

import "strings"

// Tone describes how a story should sound and which thematic elements it
// should lean on for a given emotion.
type Tone struct {
	Tone          string
	ThemeElements string
}

var tones = map[string]Tone{
	"happy": {
		Tone:          "playful and upbeat",
		ThemeElements: "sunshine, laughter, and small celebrations",
	},
	"sad": {
		Tone:          "gentle and comforting",
		ThemeElements: "warm hugs, kind friends, and cozy safe places",
	},
	"angry": {
		Tone:          "calm and steadying",
		ThemeElements: "deep breaths, patient heroes, and peaceful resolutions",
	},
	"fearful": {
		Tone:          "reassuring and brave",
		ThemeElements: "night lights, loyal companions, and courage found in small steps",
	},
	"surprised": {
		Tone:          "curious and wonder-filled",
		ThemeElements: "hidden doors, friendly mysteries, and delightful discoveries",
	},
	"neutral": {
		Tone:          "warm and inviting",
		ThemeElements: "everyday adventures and friendly faces",
	},
}

// Map returns the tone entry for the emotion label. Unrecognized or empty
// labels map to the neutral entry.
func Map(emotion string) Tone {
	if t, ok := tones[strings.ToLower(strings.TrimSpace(emotion))]; ok {
		return t
	}
	return tones["neutral"]
}
