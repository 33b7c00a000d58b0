package index

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"storyweaver/internal/chunker"
	"storyweaver/internal/domain"
	"storyweaver/internal/embedding"
)

type countingFetcher struct {
	calls atomic.Int32
	text  string
}

func (f *countingFetcher) Fetch(ctx context.Context, theme string) string {
	f.calls.Add(1)
	return f.text
}

func newTestRegistry(t *testing.T, fetcher domain.Fetcher) *Registry {
	t.Helper()
	r, err := NewRegistry(t.TempDir(), fetcher, chunker.NewWindowChunker(100, 20), func() (domain.Embedder, error) {
		return embedding.NewTFIDF(), nil
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

const fableText = `The brave rabbit hopped across the meadow looking for clover.
A sleepy bear watched the river for silver fish.
The rabbit and the bear shared berries under the old oak tree.
When winter came the friends told stories until spring returned.`

func TestGetOrBuildFetchesOnce(t *testing.T) {
	f := &countingFetcher{text: fableText}
	r := newTestRegistry(t, f)

	first, err := r.GetOrBuild(context.Background(), "animal")
	if err != nil {
		t.Fatalf("first GetOrBuild: %v", err)
	}
	second, err := r.GetOrBuild(context.Background(), "animal")
	if err != nil {
		t.Fatalf("second GetOrBuild: %v", err)
	}
	if first != second {
		t.Error("second call did not short-circuit to the active index")
	}
	if got := f.calls.Load(); got != 1 {
		t.Errorf("fetcher called %d times, want 1", got)
	}
}

func TestGetOrBuildConcurrentFirstAccessBuildsOnce(t *testing.T) {
	f := &countingFetcher{text: fableText}
	r := newTestRegistry(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.GetOrBuild(context.Background(), "bedtime"); err != nil {
				t.Errorf("GetOrBuild: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := f.calls.Load(); got != 1 {
		t.Errorf("fetcher called %d times under concurrent first access, want 1", got)
	}
}

func TestGetOrBuildLoadsPersistedState(t *testing.T) {
	dir := t.TempDir()
	newReg := func(f domain.Fetcher) *Registry {
		r, err := NewRegistry(dir, f, chunker.NewWindowChunker(100, 20), func() (domain.Embedder, error) {
			return embedding.NewTFIDF(), nil
		})
		if err != nil {
			t.Fatalf("NewRegistry: %v", err)
		}
		return r
	}

	f1 := &countingFetcher{text: fableText}
	if _, err := newReg(f1).GetOrBuild(context.Background(), "animal"); err != nil {
		t.Fatalf("build: %v", err)
	}

	// A fresh registry over the same dir must load from disk, not refetch.
	f2 := &countingFetcher{text: fableText}
	idx, err := newReg(f2).GetOrBuild(context.Background(), "animal")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := f2.calls.Load(); got != 0 {
		t.Errorf("fetcher called %d times when persisted state exists, want 0", got)
	}
	if idx.Len() == 0 {
		t.Error("loaded index has no passages")
	}

	results, err := idx.Retrieve("brave rabbit clover", 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no retrieval results from loaded index")
	}
	for _, res := range results {
		if res.Passage.Theme != "animal" {
			t.Errorf("retrieved passage with theme %q", res.Passage.Theme)
		}
	}
}

func TestGetOrBuildRebuildsFromSchemaOnlyFile(t *testing.T) {
	dir := t.TempDir()
	f := &countingFetcher{text: fableText}
	r, err := NewRegistry(dir, f, chunker.NewWindowChunker(100, 20), func() (domain.Embedder, error) {
		return embedding.NewTFIDF(), nil
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	// An interrupted persist can leave a file with the schema but no rows.
	st, err := openStore(r.themePath("animal"))
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx, err := r.GetOrBuild(context.Background(), "animal")
	if err != nil {
		t.Fatalf("GetOrBuild with schema-only file: %v", err)
	}
	if idx.Len() == 0 {
		t.Error("rebuilt index has no passages")
	}
	if got := f.calls.Load(); got != 1 {
		t.Errorf("fetcher called %d times, want 1 rebuild fetch", got)
	}

	// The repaired file must load cleanly in a fresh registry.
	f2 := &countingFetcher{text: fableText}
	r2, err := NewRegistry(dir, f2, chunker.NewWindowChunker(100, 20), func() (domain.Embedder, error) {
		return embedding.NewTFIDF(), nil
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if _, err := r2.GetOrBuild(context.Background(), "animal"); err != nil {
		t.Fatalf("load repaired index: %v", err)
	}
	if got := f2.calls.Load(); got != 0 {
		t.Errorf("fetcher called %d times when repaired state exists, want 0", got)
	}
}

func TestRetrieveRanksRelevantPassageFirst(t *testing.T) {
	f := &countingFetcher{text: fableText}
	r := newTestRegistry(t, f)

	results, err := r.Retrieve(context.Background(), "animal", "sleepy bear silver fish", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Score <= 0 {
		t.Errorf("top score = %v, want > 0", results[0].Score)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Error("results not ordered by descending score")
		}
	}
}

func TestInvalidateForcesRebuild(t *testing.T) {
	f := &countingFetcher{text: fableText}
	r := newTestRegistry(t, f)

	if _, err := r.GetOrBuild(context.Background(), "animal"); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := r.Invalidate("animal"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := r.GetOrBuild(context.Background(), "animal"); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if got := f.calls.Load(); got != 2 {
		t.Errorf("fetcher called %d times after invalidation, want 2", got)
	}
}

func TestThemesDoNotMix(t *testing.T) {
	f := &countingFetcher{text: fableText}
	r := newTestRegistry(t, f)

	a, err := r.GetOrBuild(context.Background(), "animal")
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.GetOrBuild(context.Background(), "mythology")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("different themes share one index")
	}
	if a.Theme() != "animal" || b.Theme() != "mythology" {
		t.Errorf("themes mixed: %q / %q", a.Theme(), b.Theme())
	}
}
