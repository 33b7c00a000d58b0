package safety

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsSafe(t *testing.T) {
	f, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"clean english", "Once upon a time a brave rabbit hopped through the meadow.", true},
		{"blocked english term", "The pirate waved his gun at the crew.", false},
		{"blocked term uppercase", "The dragon wanted to KILL the knight.", false},
		{"blocked term inside sentence", "There was blood on the castle floor.", false},
		{"clean spanish", "Había una vez un conejo valiente que vivía en el bosque encantado.", true},
		{"blocked spanish term", "El villano quería usar una pistola en el bosque oscuro.", false},
		{"empty input", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IsSafe(tt.text); got != tt.want {
				t.Errorf("IsSafe(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blocklist.tsv")
	if err := os.WriteFile(path, []byte("dragonfire\ten\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.IsSafe("the dragonfire burned brightly") {
		t.Error("expected custom term to be blocked")
	}
	if !f.IsSafe("a gentle tale about friendship") {
		t.Error("expected clean text to pass")
	}
}

func TestNewRejectsEmptyDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.tsv")
	if err := os.WriteFile(path, []byte("# only comments\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path); err == nil {
		t.Error("expected error for dataset without english entries")
	}
}

func TestNewRejectsMalformedRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.tsv")
	if err := os.WriteFile(path, []byte("no-tab-here\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path); err == nil {
		t.Error("expected error for malformed row")
	}
}
