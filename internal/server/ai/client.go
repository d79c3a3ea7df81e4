// Package ai talks to the external completion provider. The client returns
// typed errors; the canned fail-soft text callers show end users lives at
// the HTTP boundary, not here, so the fallback stays testable without a
// network.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// ErrUnavailable is returned for any transport or provider failure. Callers
// degrade to a safe canned response instead of surfacing it.
var ErrUnavailable = errors.New("completion provider unavailable")

// systemPrompt is the fixed safety instruction sent with every completion.
// The assistant must never produce medical or psychological diagnoses.
const systemPrompt = "You are Sereno, an assistant focused on accessibility and sensory regulation. " +
	"1. When given an image, analyze ONLY sensory triggers (lights, patterns, clutter). " +
	"2. When given text, suggest calm and social strategies. " +
	"3. NEVER give medical or psychological diagnoses. Be brief."

// softenPrompt drives the tone-softening completion: rewrite short, blunt
// phrases politely while preserving meaning, returning only the rewrite.
const softenPrompt = "You are an expert in social communication and etiquette. " +
	"You receive short, direct or blunt phrases and rewrite them in a polite, " +
	"empathetic and professional way while keeping the original meaning. " +
	"Reply with only the rewritten phrase, no extra explanation."

// Config configures the completion client. Injected at construction; there
// is no package-level client state.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// Client is a chat-completions client for an OpenAI-compatible provider.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewClient builds a client from config, applying defaults for anything unset.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	return &Client{
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// message is a chat message. Content is a string or []contentPart for
// multimodal requests.
type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// contentPart is one part of multimodal content (text or image).
type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends text, and optionally a base64-encoded JPEG image, to the
// provider and returns the assistant reply. Any failure maps to
// ErrUnavailable.
func (c *Client) Complete(ctx context.Context, text, imageB64 string) (string, error) {
	userText := text
	if userText == "" {
		userText = "Analyze this image for sensory triggers."
	}

	content := []contentPart{{Type: "text", Text: userText}}
	if imageB64 != "" {
		content = append(content, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:image/jpeg;base64," + imageB64},
		})
	}

	return c.invoke(ctx, []message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: content},
	})
}

// Soften rewrites a blunt phrase into a polite one.
func (c *Client) Soften(ctx context.Context, text string) (string, error) {
	return c.invoke(ctx, []message{
		{Role: "system", Content: softenPrompt},
		{Role: "user", Content: fmt.Sprintf("Soften this phrase: %q", text)},
	})
}

func (c *Client) invoke(ctx context.Context, messages []message) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: API key not configured", ErrUnavailable)
	}

	body, err := json.Marshal(chatRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: provider returned %s", ErrUnavailable, resp.Status)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	return chatResp.Choices[0].Message.Content, nil
}
