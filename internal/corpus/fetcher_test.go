package corpus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const storyPage = `<html><body>
<div><p>The fox met a crow in the forest.</p></div>
<p>The crow held a piece of cheese.</p>
<p>  </p>
<p>The fox flattered the crow until it sang.</p>
<p>The cheese fell and the fox ran away.</p>
<p>The moral is to beware of flattery.</p>
<p>This paragraph is beyond the cap.</p>
</body></html>`

func TestFetchExtractsCappedParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(storyPage))
	}))
	defer srv.Close()

	f := New(map[string][]string{"animal": {srv.URL}}, 5, time.Second)
	got := f.Fetch(context.Background(), "animal")

	if strings.Contains(got, "beyond the cap") {
		t.Error("paragraph cap not applied")
	}
	for _, want := range []string{"fox met a crow", "piece of cheese", "beware of flattery"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing paragraph %q in %q", want, got)
		}
	}
}

func TestFetchSkipsFailingSource(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer dead.Close()
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>A turtle raced a hare.</p></body></html>"))
	}))
	defer live.Close()

	f := New(map[string][]string{"animal": {dead.URL, "http://127.0.0.1:1/nope", live.URL}}, 5, time.Second)
	got := f.Fetch(context.Background(), "animal")
	if !strings.Contains(got, "turtle raced a hare") {
		t.Errorf("live source content missing, got %q", got)
	}
}

func TestFetchAllSourcesDownReturnsSentinel(t *testing.T) {
	f := New(map[string][]string{"general": {"http://127.0.0.1:1/nope"}}, 5, time.Second)
	if got := f.Fetch(context.Background(), "bedtime"); got != NoContentSentinel {
		t.Errorf("got %q, want sentinel", got)
	}
}

func TestFetchUnknownThemeUsesGeneralSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>A general tale.</p></body></html>"))
	}))
	defer srv.Close()

	f := New(map[string][]string{"general": {srv.URL}}, 5, time.Second)
	if got := f.Fetch(context.Background(), "space-pirates"); !strings.Contains(got, "general tale") {
		t.Errorf("unknown theme did not fall back to general set, got %q", got)
	}
}
