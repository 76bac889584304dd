package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unboundedlabs/unbounded/internal/apperr"
	"github.com/unboundedlabs/unbounded/internal/config"
)

func TestWrapErrClassifiesTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := wrapErr(ctx, ctx.Err())
	var ge *apperr.GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if ge.Kind != apperr.GenerationTimeout {
		t.Fatalf("expected timeout kind, got %s", ge.Kind)
	}
}

func TestWrapErrClassifiesProviderError(t *testing.T) {
	err := wrapErr(context.Background(), errors.New("503 service unavailable"))
	var ge *apperr.GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if ge.Kind != apperr.GenerationProviderError {
		t.Fatalf("expected provider_error kind, got %s", ge.Kind)
	}
}

func TestCheckTextRejectsBlank(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		_, err := checkText(raw)
		var ge *apperr.GenerationError
		if !errors.As(err, &ge) {
			t.Fatalf("%q: expected GenerationError, got %v", raw, err)
		}
		if ge.Kind != apperr.GenerationInvalidResponse {
			t.Fatalf("%q: expected invalid_response kind, got %s", raw, ge.Kind)
		}
	}
}

func TestCheckTextPassesThrough(t *testing.T) {
	got, err := checkText(`{"text":"hello"}`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != `{"text":"hello"}` {
		t.Fatalf("text must pass through unchanged, got %q", got)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.Config{Provider: "mystery"})
	if err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
