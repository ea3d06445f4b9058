package langfuse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blaisecz/sleep-coach/pkg/logger"
)

// PromptSource tells where a loaded prompt came from.
type PromptSource string

const (
	SourceLangfuse PromptSource = "langfuse"
	SourceCache    PromptSource = "cache"
	SourceNone     PromptSource = ""
)

// PromptLoaderConfig describes how to load the system prompt from Langfuse
// prompt management, with a local file as cache and fallback.
type PromptLoaderConfig struct {
	Config

	PromptName  string
	PromptLabel string
	CachePath   string
}

var (
	errLangfuseDisabled = errors.New("langfuse integration disabled")
	// ErrNoPrompt means neither Langfuse nor the cache file yielded a prompt.
	ErrNoPrompt = errors.New("no managed prompt available")
)

// PromptLoader fetches a managed system prompt once at startup.
type PromptLoader struct {
	cfg        PromptLoaderConfig
	httpClient *http.Client
	log        *logger.Logger
}

func NewPromptLoader(cfg PromptLoaderConfig, log *logger.Logger) *PromptLoader {
	if log == nil {
		log = logger.Nop()
	}
	return &PromptLoader{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With("component", "langfuse-prompt"),
	}
}

// Load returns the prompt text and its source. A successful fetch refreshes
// the cache file; a failed one falls back to it. With neither available the
// result is ErrNoPrompt and callers keep their built-in prompt.
func (l *PromptLoader) Load(ctx context.Context) (string, PromptSource, error) {
	if l.cfg.PromptName != "" {
		prompt, err := l.fetch(ctx)
		switch {
		case err == nil:
			if err := writeCache(l.cfg.CachePath, prompt); err != nil {
				l.log.Warn("failed to cache prompt locally", "path", l.cfg.CachePath, "error", err)
			}
			return prompt, SourceLangfuse, nil
		case !errors.Is(err, errLangfuseDisabled):
			l.log.Warn("prompt fetch failed, trying cache", "prompt", l.cfg.PromptName, "error", err)
		}
	}

	prompt, err := readCache(l.cfg.CachePath)
	if err != nil {
		return "", SourceNone, fmt.Errorf("%w: %v", ErrNoPrompt, err)
	}
	return prompt, SourceCache, nil
}

func (l *PromptLoader) fetch(ctx context.Context) (string, error) {
	if !l.cfg.Enabled() {
		return "", errLangfuseDisabled
	}

	parsed, err := url.Parse(strings.TrimSuffix(l.cfg.BaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid LANGFUSE_BASE_URL: %w", err)
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/api/public/v2/prompts/" + url.PathEscape(l.cfg.PromptName)
	if l.cfg.PromptLabel != "" {
		q := parsed.Query()
		q.Set("label", l.cfg.PromptLabel)
		parsed.RawQuery = q.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create prompt request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(l.cfg.PublicKey, l.cfg.SecretKey)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call prompt API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("prompt API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var promptResp struct {
		Type   string          `json:"type"`
		Prompt json.RawMessage `json:"prompt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&promptResp); err != nil {
		return "", fmt.Errorf("decode prompt response: %w", err)
	}

	var text string
	switch promptResp.Type {
	case "", "text":
		if err := json.Unmarshal(promptResp.Prompt, &text); err != nil {
			return "", fmt.Errorf("parse text prompt: %w", err)
		}
	case "chat":
		var messages []chatMessage
		if err := json.Unmarshal(promptResp.Prompt, &messages); err != nil {
			return "", fmt.Errorf("parse chat prompt: %w", err)
		}
		text = systemContent(messages)
	default:
		return "", fmt.Errorf("unsupported prompt type %q", promptResp.Type)
	}

	if strings.TrimSpace(text) == "" {
		return "", errors.New("managed prompt is empty")
	}
	return text, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// systemContent joins the system messages of a chat prompt. The user turn
// is always rendered locally from the sleep record.
func systemContent(messages []chatMessage) string {
	var parts []string
	for _, m := range messages {
		if strings.EqualFold(m.Role, "system") && strings.TrimSpace(m.Content) != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func readCache(path string) (string, error) {
	if path == "" {
		return "", errors.New("no local prompt file configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read local prompt file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("local prompt file is empty")
	}
	return string(data), nil
}

func writeCache(path, prompt string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(prompt), 0o600)
}
