package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGeminiGenerate(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "secret")
	var gotPath, gotKey string
	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "A story about a star."}}}},
			},
		})
	}))
	defer srv.Close()

	g := NewGemini(ProviderSettings{BaseURL: srv.URL, APIKeyEnv: "TEST_GEMINI_KEY", Model: "gemini-1.5-pro", Timeout: time.Second})
	got, err := g.Generate(context.Background(), "system text", "user text", 50)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "A story about a star." {
		t.Errorf("got %q", got)
	}
	if gotPath != "/models/gemini-1.5-pro:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotBody.GenerationConfig.MaxOutputTokens != 50 {
		t.Errorf("max tokens = %d", gotBody.GenerationConfig.MaxOutputTokens)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "user text" {
		t.Errorf("contents = %+v", gotBody.Contents)
	}
}

func TestGeminiErrorPaths(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "secret")

	t.Run("no credential", func(t *testing.T) {
		g := NewGemini(ProviderSettings{APIKeyEnv: "UNSET_ENV_VAR_FOR_TEST"})
		if g.Available() {
			t.Error("provider with no key reports available")
		}
		if _, err := g.Generate(context.Background(), "s", "p", 50); err == nil {
			t.Error("expected error without credential")
		}
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()
		g := NewGemini(ProviderSettings{BaseURL: srv.URL, APIKeyEnv: "TEST_GEMINI_KEY", Timeout: time.Second})
		if _, err := g.Generate(context.Background(), "s", "p", 50); err == nil {
			t.Error("expected error on 503")
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"candidates":[]}`))
		}))
		defer srv.Close()
		g := NewGemini(ProviderSettings{BaseURL: srv.URL, APIKeyEnv: "TEST_GEMINI_KEY", Timeout: time.Second})
		if _, err := g.Generate(context.Background(), "s", "p", 50); err == nil {
			t.Error("expected error on empty candidates")
		}
	})
}

func TestHuggingFaceGenerateStripsPromptEcho(t *testing.T) {
	t.Setenv("TEST_HF_TOKEN", "secret")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req hfRequest
		json.NewDecoder(r.Body).Decode(&req)
		// Echo the prompt back, as text-completion models do.
		json.NewEncoder(w).Encode([]map[string]string{
			{"generated_text": req.Inputs + " The fox curled up under the tree"},
		})
	}))
	defer srv.Close()

	h := NewHuggingFace(ProviderSettings{BaseURL: srv.URL, APIKeyEnv: "TEST_HF_TOKEN", Model: "gpt2", Timeout: time.Second})
	got, err := h.Generate(context.Background(), "system", "prompt", 50)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if strings.Contains(got, "system") {
		t.Errorf("prompt echo not stripped: %q", got)
	}
	if !strings.HasSuffix(got, "What do you think happens next?") {
		t.Errorf("missing appended question: %q", got)
	}
}

func TestHuggingFaceEmptyGenerationFails(t *testing.T) {
	t.Setenv("TEST_HF_TOKEN", "secret")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	h := NewHuggingFace(ProviderSettings{BaseURL: srv.URL, APIKeyEnv: "TEST_HF_TOKEN", Timeout: time.Second})
	if _, err := h.Generate(context.Background(), "s", "p", 50); err == nil {
		t.Error("expected error on empty generation list")
	}
}
