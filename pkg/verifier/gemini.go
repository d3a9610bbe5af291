package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

const promptTemplate = `You are a security assistant at a facility reception desk.
A visitor submitted a gate pass request.
Pass type: %s
Stated purpose: %q
Assess whether the purpose is plausible and specific enough for this pass type.
Reply with a short reasoning of at most two sentences.`

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini asks a Gemini model for a structured {reasoning} answer.
type Gemini struct {
	models contentGenerator
	model  string
	logger *zap.Logger
}

func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newGemini(client.Models, model, logger), nil
}

func newGemini(models contentGenerator, model string, logger *zap.Logger) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{
		models: models,
		model:  model,
		logger: logger.Named("verifier"),
	}
}

func (g *Gemini) VerifyPurpose(ctx context.Context, purpose, passType string) (*Result, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"reasoning": {Type: genai.TypeString},
			},
			Required: []string{"reasoning"},
		},
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(fmt.Sprintf(promptTemplate, passType, purpose)), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if strings.TrimSpace(result.Reasoning) == "" {
		return nil, ErrEmptyResponse
	}

	g.logger.Debug("Purpose verified",
		zap.String("model", g.model),
		zap.String("pass_type", passType),
	)
	return &result, nil
}
