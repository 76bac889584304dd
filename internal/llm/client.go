// Package llm abstracts the language-generation backends behind one
// request/response contract. Backend selection is explicit configuration;
// callers never branch on provider identity.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/unboundedlabs/unbounded/internal/apperr"
	"github.com/unboundedlabs/unbounded/internal/config"
)

// Request is a single generation call.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
}

// Client is implemented once per provider.
type Client interface {
	// Generate returns the raw completion text. Failures are always
	// *apperr.GenerationError with a uniform kind taxonomy.
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// New selects a backend from configuration.
func New(ctx context.Context, cfg config.Config) (Client, error) {
	switch cfg.Provider {
	case "openai":
		return newOpenAIClient(cfg)
	case "gemini":
		return newGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown generation provider: %s", cfg.Provider)
	}
}

// wrapErr maps a backend failure onto the uniform error contract.
func wrapErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.Generation(apperr.GenerationTimeout, err)
	}
	return apperr.Generation(apperr.GenerationProviderError, err)
}

// checkText rejects blank completions.
func checkText(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperr.Generation(apperr.GenerationInvalidResponse, fmt.Errorf("empty completion"))
	}
	return text, nil
}
