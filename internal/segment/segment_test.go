package segment

import (
	"strings"
	"testing"
)

func TestSplitThreeEqualGroups(t *testing.T) {
	story := "One. Two! Three? Four. Five. Six."
	parts := Split(story)
	if parts.Beginning != "One. Two!" {
		t.Errorf("beginning = %q", parts.Beginning)
	}
	if parts.Middle != "Three? Four." {
		t.Errorf("middle = %q", parts.Middle)
	}
	if parts.End != "Five. Six." {
		t.Errorf("end = %q", parts.End)
	}
}

func TestSplitRemainderGoesToLeadingGroups(t *testing.T) {
	story := "One. Two. Three. Four. Five. Six. Seven. Eight."
	parts := Split(story)
	for _, p := range []string{parts.Beginning, parts.Middle, parts.End} {
		if strings.TrimSpace(p) == "" {
			t.Fatal("empty part")
		}
	}
	if !strings.HasPrefix(parts.Beginning, "One.") {
		t.Errorf("beginning = %q", parts.Beginning)
	}
	if !strings.HasSuffix(parts.End, "Eight.") {
		t.Errorf("end = %q", parts.End)
	}
}

func TestSplitSingleSentenceCollapses(t *testing.T) {
	story := "A tiny tale about one rabbit."
	parts := Split(story)
	if parts.Beginning != story || parts.Middle != story || parts.End != story {
		t.Errorf("single-sentence story did not collapse: %+v", parts)
	}
}

func TestSplitTwoSentencesCollapses(t *testing.T) {
	story := "First sentence. Second sentence."
	parts := Split(story)
	if parts.Beginning != story || parts.Middle != story || parts.End != story {
		t.Errorf("two-sentence story did not collapse: %+v", parts)
	}
}

func TestSplitNoTerminatorCollapses(t *testing.T) {
	story := "a story with no punctuation at all"
	parts := Split(story)
	if parts.Beginning != story || parts.Middle != story || parts.End != story {
		t.Errorf("unterminated story did not collapse: %+v", parts)
	}
}

func TestSplitNeverReturnsEmptyParts(t *testing.T) {
	for _, story := range []string{
		"", "One.", "One. Two.", "One. Two. Three.", "One. Two. Three. Four. Five.",
	} {
		parts := Split(story)
		if story == "" {
			continue // nothing to assert for empty input
		}
		if parts.Beginning == "" || parts.Middle == "" || parts.End == "" {
			t.Errorf("Split(%q) produced an empty part: %+v", story, parts)
		}
	}
}
