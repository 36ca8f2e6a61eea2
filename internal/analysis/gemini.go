package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client, asking
// for application/json and decoding the result fields.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("analysis: init gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }

func (g *GeminiClient) Close() error { return nil }

// Analyze sends the prompt plus the request JSON and decodes the structured
// result. Transient failures are retried with short backoff; the third
// failure is returned wrapped in ErrRequest.
func (g *GeminiClient) Analyze(ctx context.Context, req Request) (Result, error) {
	in, _ := json.MarshalIndent(req, "", "  ")
	full := analysisPrompt() + "\n[INPUT JSON]\n" + string(in)
	log.Printf("analysis request (%s): %d bytes", g.model, len(full))

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Result{}, fmt.Errorf("%w: %v", ErrRequest, ctx.Err())
			case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
			}
		}
		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
		)
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = fmt.Errorf("empty response from model")
			continue
		}
		var out Result
		if err := json.Unmarshal([]byte(resp.Candidates[0].Content.Parts[0].Text), &out); err != nil {
			lastErr = fmt.Errorf("invalid JSON from model: %v", err)
			continue
		}
		return out, nil
	}
	return Result{}, fmt.Errorf("%w: %v", ErrRequest, lastErr)
}
