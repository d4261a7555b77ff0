package summary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"greencart-ops-api/config"

	"google.golang.org/genai"
)

// ErrThrottled marks a generator failure caused by rate limiting or quota.
var ErrThrottled = errors.New("generator throttled")

var throttlePattern = regexp.MustCompile(`(?i)429|rateLimitExceeded|quota|RESOURCE_EXHAUSTED`)

// GeminiGenerator produces summaries with the Gemini API.
type GeminiGenerator struct {
	client          *genai.Client
	model           string
	temperature     float32
	maxOutputTokens int32
}

func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &GeminiGenerator{
		client:          client,
		model:           model,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		MaxOutputTokens:  g.maxOutputTokens,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: %s: empty response", g.model)
	}
	return text, nil
}

func (g *GeminiGenerator) Name() string {
	return "gemini:" + g.model
}

func classifyGeminiError(err error) error {
	if isThrottled(err) {
		return fmt.Errorf("gemini: %w: %v", ErrThrottled, err)
	}
	return fmt.Errorf("gemini: generate: %w", err)
}

func isThrottled(err error) bool {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
			return true
		}
	}
	// Value-typed API errors still render code and status into the message.
	return throttlePattern.MatchString(err.Error())
}
