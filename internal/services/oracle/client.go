package oracle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lectern/internal/evidence"
	"lectern/internal/transitions"
)

const (
	jsonResponseType   = "json_object"
	defaultHTTPTimeout = 300 * time.Second
)

// systemPrompt pins the output contract; the full task description travels
// with the evidence bundle.
const systemPrompt = "You are a precise slide-alignment assistant. You must respond with JSON only."

// Config captures the runtime settings required to talk to the alignment
// oracle. All fields come from configuration; nothing is read from the
// environment here.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Referer string
	Title   string
	Timeout time.Duration
}

// Client wraps the OpenRouter chat completion API for alignment requests.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an oracle client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &Client{
		cfg: Config{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimSpace(cfg.BaseURL),
			Model:   strings.TrimSpace(cfg.Model),
			Referer: strings.TrimSpace(cfg.Referer),
			Title:   strings.TrimSpace(cfg.Title),
			Timeout: timeout,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://openrouter.ai/api/v1/chat/completions"
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

// Align submits the evidence bundle and returns the oracle's transition
// candidates. Exactly one request is made: transport and content failures
// are returned to the caller, never retried here.
func (c *Client) Align(ctx context.Context, bundle evidence.Bundle) ([]transitions.Candidate, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("oracle align: api key required")
	}
	if strings.TrimSpace(c.cfg.Model) == "" {
		return nil, errors.New("oracle align: model required")
	}
	if bundle.ImageCount() == 0 {
		return nil, errors.New("oracle align: bundle carries no images")
	}
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: bundleContent(bundle)},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}
	completion, err := c.sendChatRequest(ctx, payload)
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("oracle align: empty choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return nil, errors.New("oracle align: empty content")
	}
	var parsed struct {
		Transitions []transitions.Candidate `json:"transitions"`
	}
	if err := decodeOracleJSON(content, &parsed); err != nil {
		return nil, &DecodeError{Raw: content, Err: err}
	}
	if parsed.Transitions == nil {
		return nil, &DecodeError{Raw: content, Err: errors.New("missing transitions array")}
	}
	return parsed.Transitions, nil
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return errors.New("oracle health: api key required")
	}
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You must respond with JSON only."},
			{Role: "user", Content: "Respond with {\"ok\":true}"},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}
	completion, err := c.sendChatRequest(ctx, payload)
	if err != nil {
		return err
	}
	if len(completion.Choices) == 0 {
		return errors.New("oracle health: empty response")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return errors.New("oracle health: empty content")
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return fmt.Errorf("oracle health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("oracle health: unexpected response")
	}
	return nil
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

// chatMessage content is a plain string for text-only messages or a
// []contentPart slice for multimodal ones.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// bundleContent converts the evidence sequence into ordered content parts.
// Each caption precedes its image so the oracle can tie labels to pictures.
func bundleContent(bundle evidence.Bundle) []contentPart {
	parts := make([]contentPart, 0, len(bundle.Entries)+bundle.ImageCount())
	for _, entry := range bundle.Entries {
		if entry.Text != "" {
			parts = append(parts, contentPart{Type: "text", Text: entry.Text})
		}
		if len(entry.Image) > 0 {
			parts = append(parts, contentPart{
				Type: "image_url",
				ImageURL: &imageURL{
					URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(entry.Image),
				},
			})
		}
	}
	return parts
}

func (c *Client) sendChatRequest(ctx context.Context, payload chatCompletionRequest) (chatCompletionResponse, error) {
	var completion chatCompletionResponse
	encoded, err := json.Marshal(payload)
	if err != nil {
		return completion, fmt.Errorf("oracle request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return completion, fmt.Errorf("oracle request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
		req.Header.Set("Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return completion, fmt.Errorf("oracle request: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return completion, fmt.Errorf("oracle request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return completion, fmt.Errorf("oracle request: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return completion, fmt.Errorf("oracle request: decode response: %w", err)
	}
	if completion.Error != nil {
		return completion, fmt.Errorf("oracle request: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	return completion, nil
}
