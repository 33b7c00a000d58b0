// Package corpus retrieves themed reference text from remote story sources.
package corpus

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// NoContentSentinel is returned when no source yields any paragraph text.
// Callers treat it as a degenerate corpus, not an error.
const NoContentSentinel = "No themed stories found."

// Fetcher pulls paragraph text for a theme from a fixed set of source URLs.
// A single unreachable source never fails the whole fetch.
type Fetcher struct {
	sources             map[string][]string
	paragraphsPerSource int
	client              *http.Client
}

// New creates a fetcher over the given theme source map. Unrecognized themes
// resolve to the "general" source set.
func New(sources map[string][]string, paragraphsPerSource int, timeout time.Duration) *Fetcher {
	if paragraphsPerSource <= 0 {
		paragraphsPerSource = 5
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Fetcher{
		sources:             sources,
		paragraphsPerSource: paragraphsPerSource,
		client:              &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves and concatenates paragraph text across the theme's sources
// in source-list order. Sources that error or return a non-200 status are
// skipped. If nothing is extracted, NoContentSentinel is returned.
func (f *Fetcher) Fetch(ctx context.Context, theme string) string {
	urls, ok := f.sources[strings.ToLower(theme)]
	if !ok {
		urls = f.sources["general"]
	}
	var paragraphs []string
	for _, url := range urls {
		ps, err := f.fetchSource(ctx, url)
		if err != nil {
			logrus.WithFields(logrus.Fields{"url": url, "theme": theme}).
				WithError(err).Warn("skipping corpus source")
			continue
		}
		paragraphs = append(paragraphs, ps...)
	}
	if len(paragraphs) == 0 {
		return NoContentSentinel
	}
	return strings.Join(paragraphs, "\n")
}

func (f *Fetcher) fetchSource(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %s", resp.Status)
	}
	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	return extractParagraphs(doc, f.paragraphsPerSource), nil
}

// extractParagraphs collects the text of the first limit <p> elements in
// document order.
func extractParagraphs(doc *html.Node, limit int) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(out) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "p" {
			text := strings.TrimSpace(nodeText(n))
			if text != "" {
				out = append(out, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
