package langfuse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/v2/prompts/sleep-coach-system", r.URL.Path)
		assert.Equal(t, "production", r.URL.Query().Get("label"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func loaderConfig(baseURL, cachePath string) PromptLoaderConfig {
	return PromptLoaderConfig{
		Config:      Config{BaseURL: baseURL, PublicKey: "pk", SecretKey: "sk"},
		PromptName:  "sleep-coach-system",
		PromptLabel: "production",
		CachePath:   cachePath,
	}
}

func TestPromptLoader_TextPromptIsCached(t *testing.T) {
	srv := promptServer(t, http.StatusOK, `{"type":"text","prompt":"Du bist ein Schlafcoach."}`)
	cache := filepath.Join(t.TempDir(), "prompts", "system.txt")

	text, source, err := NewPromptLoader(loaderConfig(srv.URL, cache), nil).Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SourceLangfuse, source)
	assert.Equal(t, "Du bist ein Schlafcoach.", text)

	cached, err := os.ReadFile(cache)
	require.NoError(t, err)
	assert.Equal(t, text, string(cached))
}

func TestPromptLoader_ChatPromptKeepsSystemMessages(t *testing.T) {
	body := `{"type":"chat","prompt":[
		{"role":"system","content":"Regel eins."},
		{"role":"user","content":"{{record}}"},
		{"role":"system","content":"Regel zwei."}
	]}`
	srv := promptServer(t, http.StatusOK, body)

	text, _, err := NewPromptLoader(loaderConfig(srv.URL, ""), nil).Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Regel eins.\n\nRegel zwei.", text)
}

func TestPromptLoader_FallsBackToCache(t *testing.T) {
	srv := promptServer(t, http.StatusNotFound, `{"message":"not found"}`)
	cache := filepath.Join(t.TempDir(), "system.txt")
	require.NoError(t, os.WriteFile(cache, []byte("cached prompt"), 0o600))

	text, source, err := NewPromptLoader(loaderConfig(srv.URL, cache), nil).Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, SourceCache, source)
	assert.Equal(t, "cached prompt", text)
}

func TestPromptLoader_DisabledWithoutCache(t *testing.T) {
	cfg := loaderConfig("", "")

	_, source, err := NewPromptLoader(cfg, nil).Load(context.Background())

	assert.True(t, errors.Is(err, ErrNoPrompt))
	assert.Equal(t, SourceNone, source)
}

func TestPromptLoader_EmptyPromptRejected(t *testing.T) {
	srv := promptServer(t, http.StatusOK, `{"type":"text","prompt":"  "}`)

	_, _, err := NewPromptLoader(loaderConfig(srv.URL, ""), nil).Load(context.Background())

	assert.ErrorIs(t, err, ErrNoPrompt)
}

func TestPromptLoader_UnsupportedType(t *testing.T) {
	srv := promptServer(t, http.StatusOK, `{"type":"image","prompt":"x"}`)

	_, _, err := NewPromptLoader(loaderConfig(srv.URL, ""), nil).Load(context.Background())

	assert.ErrorIs(t, err, ErrNoPrompt)
}
