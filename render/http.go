package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/storymesh/storymesh/core"
)

// Provider identifies a hosted video generation API dialect.
type Provider string

// Supported providers.
const (
	ProviderSora   Provider = "sora"
	ProviderRunway Provider = "runway"
	ProviderPika   Provider = "pika"
)

// HTTPClientOptions configures an HTTPClient adapter.
type HTTPClientOptions struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPClient is a Renderer backed by a hosted video generation API. Each
// provider speaks a slightly different dialect (endpoint path and payload
// field names); everything else is shared.
type HTTPClient struct {
	provider Provider
	opts     HTTPClientOptions
	client   *http.Client
}

// renderResponse is the minimal response shape shared by the supported
// providers.
type renderResponse struct {
	VideoURL string         `json:"video_url"`
	Meta     map[string]any `json:"meta"`
}

// NewHTTPClient creates a Renderer for the given provider. An unsupported
// provider is a configuration error.
func NewHTTPClient(provider Provider, optFns ...func(o *HTTPClientOptions)) (*HTTPClient, error) {
	switch provider {
	case ProviderSora, ProviderRunway, ProviderPika:
	default:
		return nil, fmt.Errorf("unsupported video render provider: %q", provider)
	}

	opts := HTTPClientOptions{Timeout: 180 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &HTTPClient{provider: provider, opts: opts, client: client}, nil
}

// RenderShot implements Renderer. The shot description (subject,
// environment, camera, motion) becomes the generation prompt; duration and
// the run's resolution ride along as provider parameters.
func (c *HTTPClient) RenderShot(ctx context.Context, style core.GlobalStyle, shot *core.Shot) (string, error) {
	payload := c.buildPayload(style, shot)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("render request encoding: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+c.path(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("render call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("render call failed: %s returned status %d: %s", c.provider, resp.StatusCode, snippet)
	}

	var out renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("render response decoding: %w", err)
	}
	if out.VideoURL == "" {
		return "", fmt.Errorf("render response missing video_url")
	}
	return out.VideoURL, nil
}

func (c *HTTPClient) path() string {
	switch c.provider {
	case ProviderRunway:
		return "/videos/generate"
	case ProviderPika:
		return "/render/video"
	default:
		return "/v1/generate"
	}
}

func (c *HTTPClient) buildPayload(style core.GlobalStyle, shot *core.Shot) map[string]any {
	prompt := shot.ToPrompt()
	if c.provider == ProviderRunway {
		return map[string]any{
			"text_prompt":    prompt,
			"video_style":    style.VisualStyle,
			"length_seconds": shot.Duration,
			"resolution":     style.Resolution,
		}
	}
	return map[string]any{
		"prompt":     prompt,
		"style":      style.VisualStyle,
		"duration":   shot.Duration,
		"resolution": style.Resolution,
	}
}
