package langfuse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/go-resty/resty/v2"
)

// PromptLoaderConfig describes where a prompt lives in Langfuse and on disk.
type PromptLoaderConfig struct {
	BaseURL   string
	PublicKey string
	SecretKey string

	PromptName  string
	PromptLabel string
	SavePath    string
}

var (
	errLangfuseDisabled = errors.New("langfuse integration disabled")
	// ErrNoPrompt means neither Langfuse nor the local file produced a prompt.
	ErrNoPrompt = errors.New("no prompt available")
)

// LoadPrompt fetches the named prompt from Langfuse and caches it at SavePath.
// When the fetch fails the cached copy is used.
func LoadPrompt(ctx context.Context, cfg PromptLoaderConfig, log *logger.Logger) (string, error) {
	if cfg.PromptName == "" {
		return readPromptFromFile(cfg.SavePath)
	}

	prompt, err := fetchPromptFromLangfuse(ctx, cfg)
	if err == nil {
		if err := savePromptToFile(cfg.SavePath, prompt); err != nil {
			log.Warn("Failed to cache prompt locally", "path", cfg.SavePath, "error", err)
		}
		return prompt, nil
	}
	if !errors.Is(err, errLangfuseDisabled) {
		log.Warn("Prompt fetch failed, using local copy", "prompt", cfg.PromptName, "error", err)
	}

	return readPromptFromFile(cfg.SavePath)
}

type promptResponse struct {
	Type   string          `json:"type"`
	Prompt json.RawMessage `json:"prompt"`
}

func fetchPromptFromLangfuse(ctx context.Context, cfg PromptLoaderConfig) (string, error) {
	if cfg.BaseURL == "" || cfg.PublicKey == "" || cfg.SecretKey == "" {
		return "", errLangfuseDisabled
	}

	requestCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetBasicAuth(cfg.PublicKey, cfg.SecretKey).
		R().
		SetContext(requestCtx).
		SetHeader("Accept", "application/json")
	if cfg.PromptLabel != "" {
		req.SetQueryParam("label", cfg.PromptLabel)
	}

	resp, err := req.Get("/api/public/v2/prompts/" + url.PathEscape(cfg.PromptName))
	if err != nil {
		return "", fmt.Errorf("call Langfuse prompt API: %w", err)
	}
	if resp.IsError() {
		body := resp.String()
		if len(body) > 4096 {
			body = body[:4096]
		}
		return "", fmt.Errorf("Langfuse prompt API returned %d: %s", resp.StatusCode(), strings.TrimSpace(body))
	}

	var pr promptResponse
	if err := json.Unmarshal(resp.Body(), &pr); err != nil {
		return "", fmt.Errorf("decode Langfuse prompt response: %w", err)
	}

	switch pr.Type {
	case "", "text":
		var textPrompt string
		if err := json.Unmarshal(pr.Prompt, &textPrompt); err != nil {
			return "", fmt.Errorf("parse text prompt: %w", err)
		}
		return textPrompt, nil
	case "chat":
		var chatMessages []chatPromptMessage
		if err := json.Unmarshal(pr.Prompt, &chatMessages); err != nil {
			return "", fmt.Errorf("parse chat prompt: %w", err)
		}
		return flattenChatMessages(chatMessages), nil
	default:
		return "", fmt.Errorf("unsupported prompt type %q", pr.Type)
	}
}

type chatPromptMessage struct {
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name"`
}

func flattenChatMessages(messages []chatPromptMessage) string {
	var builder strings.Builder
	for _, msg := range messages {
		content := msg.Content
		if msg.Type == "placeholder" {
			content = ""
			if msg.Name != "" {
				content = "{{" + msg.Name + "}}"
			}
		}
		if content == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		role := msg.Role
		if role == "" {
			role = "message"
		}
		builder.WriteString(strings.ToUpper(role))
		builder.WriteString(": ")
		builder.WriteString(content)
	}
	return builder.String()
}

func readPromptFromFile(path string) (string, error) {
	if path == "" {
		return "", ErrNoPrompt
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoPrompt, err)
	}
	return string(data), nil
}

func savePromptToFile(path, prompt string) error {
	if path == "" {
		return nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(prompt), 0o600)
}
