// Package safety screens text against per-language blocklists before and
// after story generation.
package safety

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/sirupsen/logrus"
)

// FallbackLanguage is used when detection fails or the detected language has
// no dedicated blocklist.
const FallbackLanguage = "en"

//go:embed data/blocklist.tsv
var defaultBlocklist []byte

// Filter holds the loaded blocklist index. Read-only after construction,
// safe for concurrent use.
type Filter struct {
	terms map[string][]string // language code -> lowercased terms
}

// New loads the blocklist from a tab-separated (term, language) dataset at
// path. An empty path loads the embedded default dataset. A dataset that
// yields no terms for the fallback language is a construction error: the
// filter has no safe degraded mode.
func New(path string) (*Filter, error) {
	data := defaultBlocklist
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read blocklist: %w", err)
		}
		data = b
	}
	terms, err := parseBlocklist(data)
	if err != nil {
		return nil, err
	}
	if len(terms[FallbackLanguage]) == 0 {
		return nil, fmt.Errorf("blocklist has no %q entries", FallbackLanguage)
	}
	return &Filter{terms: terms}, nil
}

func parseBlocklist(data []byte) (map[string][]string, error) {
	terms := make(map[string][]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		row := strings.TrimSpace(sc.Text())
		if row == "" || strings.HasPrefix(row, "#") {
			continue
		}
		fields := strings.Split(row, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("blocklist line %d: want term<TAB>language, got %q", line, row)
		}
		term := strings.ToLower(strings.TrimSpace(fields[0]))
		lang := strings.ToLower(strings.TrimSpace(fields[1]))
		if term == "" || lang == "" {
			continue
		}
		terms[lang] = append(terms[lang], term)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan blocklist: %w", err)
	}
	return terms, nil
}

// IsSafe reports whether text contains no blocklisted term for its detected
// language. The fallback-language list is always screened as well, since
// detection is unreliable on short inputs.
func (f *Filter) IsSafe(text string) bool {
	lang := detectLanguage(text)
	lower := strings.ToLower(text)
	for _, code := range []string{lang, FallbackLanguage} {
		for _, term := range f.terms[code] {
			if strings.Contains(lower, term) {
				logrus.WithFields(logrus.Fields{"language": code, "term": term}).
					Info("safety filter blocked text")
				return false
			}
		}
	}
	return true
}

func detectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return FallbackLanguage
	}
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return FallbackLanguage
	}
	return code
}
