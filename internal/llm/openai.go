package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"plangenie/internal/models"
)

const maxResponseBytes = 4 * 1024 * 1024

// ChatConfig configures an OpenAI-compatible chat completions client.
type ChatConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	SiteURL  string
	SiteName string
	Timeout  time.Duration
}

// DefaultChatConfig targets OpenRouter.
func DefaultChatConfig(apiKey string) ChatConfig {
	return ChatConfig{
		BaseURL:  "https://openrouter.ai/api/v1",
		APIKey:   apiKey,
		Model:    "openai/gpt-3.5-turbo",
		SiteName: "PlanGenie",
		Timeout:  30 * time.Second,
	}
}

// ChatClient implements Completer against /chat/completions.
type ChatClient struct {
	baseURL    string
	apiKey     string
	model      string
	siteURL    string
	siteName   string
	httpClient *http.Client
}

// NewChatClient creates a ChatClient.
func NewChatClient(cfg ChatConfig) *ChatClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultChatConfig("").BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultChatConfig("").Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &ChatClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		siteURL:    cfg.SiteURL,
		siteName:   cfg.SiteName,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Complete posts one system and one user message and returns choices[0].message.content.
func (c *ChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	reqBody := models.ChatCompletionRequest{
		Model: c.model,
		Messages: []models.ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	var out models.ChatCompletionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("API error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", ErrNoCompletion
	}
	return out.Choices[0].Message.Content, nil
}
