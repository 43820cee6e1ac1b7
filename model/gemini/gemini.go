// Package gemini provides a model wrapper for the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"github.com/storymesh/storymesh/model"
)

// Options configures the Gemini model adapter (model id, temperature,
// max tokens, API key). Extend via functional options to preserve
// stability.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Gemini generate-content API behind the generic
// model.Model interface. Gemini carries no native tool calling here; the
// adapter is text in, text out.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a new Gemini model using the official client
func NewModel(optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:       "gemini-1.5-pro",
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &Model{
		client: client,
		opts:   opts,
	}, nil
}

// NewModelFromClient creates a new Gemini model from an existing client
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       "gemini-1.5-pro",
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{
		client: client,
		opts:   opts,
	}
}

// Generate implements model.Model. System messages are lifted into the
// system instruction; the remaining conversation becomes Gemini contents.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	cfg := &genai.GenerateContentConfig{}

	if system := extractSystemInstruction(req.Messages); system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	temperature := float32(m.opts.Temperature)
	if req.Temperature > 0 {
		temperature = float32(req.Temperature)
	}
	cfg.Temperature = &temperature

	maxTokens := m.opts.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	cfg.MaxOutputTokens = int32(maxTokens)

	resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, buildContents(req.Messages), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini api returned no candidates")
	}

	candidate := resp.Candidates[0]

	finishReason := string(candidate.FinishReason)
	if finishReason == "" {
		finishReason = "stop"
	}

	out := &model.Response{
		Content:      collectText(candidate.Content),
		FinishReason: finishReason,
	}
	if um := resp.UsageMetadata; um != nil {
		out.Usage = &model.TokenUsage{
			PromptTokens:     int(um.PromptTokenCount),
			CompletionTokens: int(um.CandidatesTokenCount),
			TotalTokens:      int(um.TotalTokenCount),
		}
	}
	return out, nil
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini"}
}

// buildContents converts normalized messages to Gemini contents.
func buildContents(messages []model.Message) []*genai.Content {
	var out []*genai.Content
	for _, msg := range messages {
		if msg.Content == "" || msg.Role == model.RoleSystem {
			continue // system messages handled separately
		}
		switch msg.Role {
		case model.RoleAssistant:
			out = append(out, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			// Treat unknown roles as user
			out = append(out, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return out
}

// extractSystemInstruction joins system messages into one instruction.
func extractSystemInstruction(messages []model.Message) string {
	var parts []string
	for _, msg := range messages {
		if msg.Role == model.RoleSystem && msg.Content != "" {
			parts = append(parts, msg.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// collectText concatenates the text parts of a candidate content.
func collectText(content *genai.Content) string {
	var sb strings.Builder
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
