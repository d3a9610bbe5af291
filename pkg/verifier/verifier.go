// Package verifier produces a plausibility comment on a pass request's stated purpose.
package verifier

import (
	"context"
	"errors"
	"strings"
)

// Result is the opaque annotation stored on a pass.
type Result struct {
	Reasoning string `json:"reasoning"`
}

// Verifier checks whether a purpose is plausible for the given pass type.
type Verifier interface {
	VerifyPurpose(ctx context.Context, purpose, passType string) (*Result, error)
}

// ErrEmptyResponse is returned when the backend answered without any reasoning.
var ErrEmptyResponse = errors.New("verifier returned an empty response")

// Func adapts a plain function to the Verifier interface.
type Func func(ctx context.Context, purpose, passType string) (*Result, error)

func (f Func) VerifyPurpose(ctx context.Context, purpose, passType string) (*Result, error) {
	return f(ctx, purpose, passType)
}

// Static answers every request with the same reasoning. Used when no
// generative backend is configured.
type Static struct {
	Reasoning string
}

func NewStatic(reasoning string) *Static {
	if strings.TrimSpace(reasoning) == "" {
		reasoning = "Automatic verification unavailable; manual review required."
	}
	return &Static{Reasoning: reasoning}
}

func (s *Static) VerifyPurpose(ctx context.Context, _, _ string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Result{Reasoning: s.Reasoning}, nil
}
