// Package index maintains per-theme embedding indexes: built once from a
// freshly fetched corpus, persisted to disk, and reused across requests.
package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"storyweaver/internal/domain"
)

// EmbedderFactory creates a fresh embedder instance for one theme index.
// Corpus-scoped embedders (TF-IDF) must not share vocabulary across themes.
type EmbedderFactory func() (domain.Embedder, error)

// Registry is the process-wide theme index cache. It guarantees at most one
// build per theme even under concurrent first access, and serves concurrent
// readers from already-built indexes.
type Registry struct {
	dir         string
	fetcher     domain.Fetcher
	chunker     domain.Chunker
	newEmbedder EmbedderFactory

	mu       sync.Mutex
	active   map[string]*Index
	inflight map[string]*buildResult
}

type buildResult struct {
	done chan struct{}
	idx  *Index
	err  error
}

// NewRegistry creates a registry persisting indexes under dir.
func NewRegistry(dir string, fetcher domain.Fetcher, chunker domain.Chunker, newEmbedder EmbedderFactory) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	return &Registry{
		dir:         dir,
		fetcher:     fetcher,
		chunker:     chunker,
		newEmbedder: newEmbedder,
		active:      make(map[string]*Index),
		inflight:    make(map[string]*buildResult),
	}, nil
}

// GetOrBuild returns the active index for theme, loading persisted state or
// building from a fresh corpus fetch on first use. A failed build is not
// cached, so a later request may retry.
func (r *Registry) GetOrBuild(ctx context.Context, theme string) (*Index, error) {
	r.mu.Lock()
	if idx, ok := r.active[theme]; ok {
		r.mu.Unlock()
		return idx, nil
	}
	if b, ok := r.inflight[theme]; ok {
		r.mu.Unlock()
		select {
		case <-b.done:
			return b.idx, b.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	b := &buildResult{done: make(chan struct{})}
	r.inflight[theme] = b
	r.mu.Unlock()

	idx, err := r.build(ctx, theme)

	r.mu.Lock()
	if err == nil {
		r.active[theme] = idx
	}
	delete(r.inflight, theme)
	r.mu.Unlock()

	b.idx, b.err = idx, err
	close(b.done)
	return idx, err
}

// Retrieve warms the theme's index if needed and returns the top-k passages
// for the query. Implements domain.Retriever.
func (r *Registry) Retrieve(ctx context.Context, theme, query string, k int) ([]domain.SearchResult, error) {
	idx, err := r.GetOrBuild(ctx, theme)
	if err != nil {
		return nil, err
	}
	return idx.Retrieve(query, k)
}

// Invalidate drops the theme's in-memory index and deletes its persisted
// state. This is the only refresh mechanism: staleness is never inferred.
func (r *Registry) Invalidate(theme string) error {
	r.mu.Lock()
	delete(r.active, theme)
	r.mu.Unlock()
	if err := os.Remove(r.themePath(theme)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (r *Registry) build(ctx context.Context, theme string) (*Index, error) {
	path := r.themePath(theme)
	if _, err := os.Stat(path); err == nil {
		idx, err := r.loadPersisted(theme, path)
		if err == nil {
			return idx, nil
		}
		// An empty or unreadable file (interrupted persist) must not pin the
		// theme to a dead index; drop it and rebuild from a fresh fetch.
		logrus.WithField("theme", theme).WithError(err).
			Warn("persisted theme index unusable, rebuilding")
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove unusable theme index: %w", err)
		}
	}

	logrus.WithField("theme", theme).Info("building theme index")
	raw := r.fetcher.Fetch(ctx, theme)
	passages := r.chunker.Chunk(raw, theme)
	if len(passages) == 0 {
		passages = []domain.Passage{{Content: raw, Theme: theme}}
	}
	emb, err := r.newEmbedder()
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	texts := passageTexts(passages)
	if err := emb.Prepare(texts); err != nil {
		return nil, fmt.Errorf("prepare embedder: %w", err)
	}
	vectors := make([][]float64, len(passages))
	for i, p := range passages {
		vec, err := emb.Embed(p.Content)
		if err != nil {
			return nil, fmt.Errorf("embed passage %d: %w", i, err)
		}
		vectors[i] = vec
	}
	// Persist to a temp file and rename into place, so a failed or
	// interrupted write never leaves a schema-only file at the final path.
	tmp := path + ".tmp"
	st, err := openStore(tmp)
	if err != nil {
		return nil, err
	}
	if err := st.save(passages, vectors); err != nil {
		st.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("persist theme index: %w", err)
	}
	if err := st.Close(); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("close theme index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("persist theme index: %w", err)
	}
	logrus.WithFields(logrus.Fields{"theme": theme, "passages": len(passages)}).
		Info("theme index built")
	return &Index{theme: theme, embedder: emb, passages: passages, vectors: vectors}, nil
}

// loadPersisted restores an index from disk without refetching or re-embedding
// the corpus. The embedder is re-prepared over the persisted passage texts,
// which is local-only and lets corpus-scoped embedders answer queries.
func (r *Registry) loadPersisted(theme, path string) (*Index, error) {
	st, err := openStore(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	passages, vectors, err := st.load()
	if err != nil {
		return nil, fmt.Errorf("load theme index: %w", err)
	}
	if len(passages) == 0 {
		return nil, fmt.Errorf("persisted index for theme %q is empty", theme)
	}
	emb, err := r.newEmbedder()
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	if err := emb.Prepare(passageTexts(passages)); err != nil {
		return nil, fmt.Errorf("prepare embedder: %w", err)
	}
	logrus.WithFields(logrus.Fields{"theme": theme, "passages": len(passages)}).
		Info("loaded persisted theme index")
	return &Index{theme: theme, embedder: emb, passages: passages, vectors: vectors}, nil
}

var themeFileRe = regexp.MustCompile(`[^a-z0-9]+`)

func (r *Registry) themePath(theme string) string {
	name := themeFileRe.ReplaceAllString(strings.ToLower(theme), "_")
	return filepath.Join(r.dir, "story_db_"+name+".db")
}

func passageTexts(passages []domain.Passage) []string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Content
	}
	return texts
}
