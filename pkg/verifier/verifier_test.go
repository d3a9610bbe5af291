package verifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	text  string
	err   error
	model string
	cfg   *genai.GenerateContentConfig
	calls int
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.cfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func TestGemini_VerifyPurpose(t *testing.T) {
	gen := &fakeGenerator{text: `{"reasoning":"Plausible delivery."}`}
	g := newGemini(gen, "", zap.NewNop())

	res, err := g.VerifyPurpose(context.Background(), "delivery", "MATERIAL")
	require.NoError(t, err)
	assert.Equal(t, "Plausible delivery.", res.Reasoning)
	assert.Equal(t, DefaultModel, gen.model)
	assert.Equal(t, "application/json", gen.cfg.ResponseMIMEType)
	assert.Contains(t, gen.cfg.ResponseSchema.Properties, "reasoning")
}

func TestGemini_Errors(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"transport error", &fakeGenerator{err: errors.New("boom")}},
		{"empty text", &fakeGenerator{text: ""}},
		{"not json", &fakeGenerator{text: "sure, looks fine"}},
		{"blank reasoning", &fakeGenerator{text: `{"reasoning":"  "}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGemini(tt.gen, "gemini-test", zap.NewNop())
			res, err := g.VerifyPurpose(context.Background(), "x", "VISITOR")
			assert.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, 1, tt.gen.calls)
		})
	}
}

func TestStatic(t *testing.T) {
	s := NewStatic("ok")
	res, err := s.VerifyPurpose(context.Background(), "anything", "VEHICLE")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Reasoning)

	assert.NotEmpty(t, NewStatic("").Reasoning)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.VerifyPurpose(ctx, "x", "VISITOR")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFunc(t *testing.T) {
	var got []string
	f := Func(func(_ context.Context, purpose, passType string) (*Result, error) {
		got = append(got, purpose, passType)
		return &Result{Reasoning: "fine"}, nil
	})

	res, err := f.VerifyPurpose(context.Background(), "meeting", "VISITOR")
	require.NoError(t, err)
	assert.Equal(t, "fine", res.Reasoning)
	assert.Equal(t, []string{"meeting", "VISITOR"}, got)
}
