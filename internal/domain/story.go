package domain

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one exchange in a storytelling session.
// The session layer owns the history; it is passed by value into the orchestrator.
type ConversationTurn struct {
	Role    Role
	Content string
}

// Passage is a chunked unit of reference text tagged with the theme it was
// fetched for. Immutable once created.
type Passage struct {
	Content string
	Theme   string
}

// SearchResult is a retrieved passage with its similarity score.
type SearchResult struct {
	Passage Passage
	Score   float64
}

// UserPreferences customizes story generation for a particular child.
type UserPreferences struct {
	Age                string
	Genre              string
	CharacterName      string
	UseMythology       bool
	UseCulturalContext bool
}

// GenerationRequest carries everything a generation strategy needs for one
// story continuation. Constructed per call, never persisted.
type GenerationRequest struct {
	Prompt          string
	History         []ConversationTurn
	Theme           string
	TargetWordCount int
	Language        string

	// Optional tone modifiers from the emotion mapper; empty means none.
	Tone          string
	ThemeElements string

	Preferences *UserPreferences
}

// StoryParts holds the three narrative parts of a generated story.
// All three are always non-empty.
type StoryParts struct {
	Beginning string
	Middle    string
	End       string
}

// Part names used as keys in StoryResult.Images.
const (
	PartBeginning = "beginning"
	PartMiddle    = "middle"
	PartEnd       = "end"
)

// EmotionContext records how a detected emotion shaped the generation prompt.
type EmotionContext struct {
	Emotion       string
	Tone          string
	ThemeElements string
}

// StoryResult is the composed outcome of one story request. Images is sparse:
// parts whose illustration failed are simply absent.
type StoryResult struct {
	Text           string
	Parts          StoryParts
	Images         map[string][]byte
	EmotionContext *EmotionContext
}
