package summarizer

import (
	"strings"
	"testing"
)

func TestSummarizeKeepsTopSentencesInOrder(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "The dragon guarded the dragon cave. A bird flew by. " +
		"The dragon loved the shiny dragon treasure. It rained once."
	got, err := s.Summarize(text, 2)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !strings.Contains(got, "dragon") {
		t.Errorf("summary dropped the dominant topic: %q", got)
	}
	// Selected sentences must appear in original order.
	first := strings.Index(got, "guarded")
	second := strings.Index(got, "treasure")
	if first != -1 && second != -1 && first > second {
		t.Errorf("sentences reordered: %q", got)
	}
}

func TestSummarizeShortTextReturnedWhole(t *testing.T) {
	s := NewFrequencySummarizer()
	got, err := s.Summarize("no terminator here", 3)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "no terminator here" {
		t.Errorf("got %q", got)
	}
}

func TestSummarizeBoundsSentenceCount(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "One. Two. Three. Four. Five. Six. Seven. Eight. Nine. Ten."
	got, err := s.Summarize(text, 3)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if n := strings.Count(got, "."); n > 3 {
		t.Errorf("summary has %d sentences, want at most 3: %q", n, got)
	}
}
