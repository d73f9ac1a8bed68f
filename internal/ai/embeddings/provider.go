// Package embeddings creates embedding vectors for semantic ranking,
// guarded against a flaky upstream by retries and a circuit breaker.
package embeddings

import (
	"context"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/Abraxas-365/cvscreen/pkg/circuit"
	"github.com/Abraxas-365/cvscreen/pkg/errx"
	"github.com/Abraxas-365/cvscreen/pkg/logx"
	"github.com/Abraxas-365/cvscreen/pkg/textx"
)

const (
	Model      = openai.EmbeddingModelTextEmbedding3Small
	Dimensions = 1536

	maxAttempts    = 5
	requestTimeout = 30 * time.Second
	maxBackoff     = 60 * time.Second
)

var ErrRegistry = errx.NewRegistry("EMBEDDING")

var (
	CodeUnavailable    = ErrRegistry.Register("UNAVAILABLE", errx.TypeUnavailable, http.StatusServiceUnavailable, "Embedding service temporarily unavailable")
	CodeRetryExhausted = ErrRegistry.Register("RETRY_EXHAUSTED", errx.TypeExternal, http.StatusBadGateway, "Embedding generation failed after retries")
	CodeEmptyResponse  = ErrRegistry.Register("EMPTY_RESPONSE", errx.TypeExternal, http.StatusBadGateway, "Embedding API returned no data")
)

// ErrUnavailable reports the breaker rejecting a call before it is attempted.
func ErrUnavailable() *errx.Error {
	return ErrRegistry.New(CodeUnavailable)
}

// embeddingsAPI is the slice of the OpenAI client the provider needs.
// Tests substitute a fake.
type embeddingsAPI interface {
	New(ctx context.Context, params openai.EmbeddingNewParams, opts ...option.RequestOption) (*openai.CreateEmbeddingResponse, error)
}

// Provider generates embedding vectors for normalized text.
type Provider struct {
	api     embeddingsAPI
	breaker *circuit.Breaker

	// sleep is swapped out in tests so backoff doesn't wall-clock.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewProvider builds a provider against the real OpenAI API. The breaker
// is injected so callers decide which dependencies share failure state.
func NewProvider(apiKey string, breaker *circuit.Breaker) *Provider {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(requestTimeout),
	)
	return newProvider(&client.Embeddings, breaker)
}

func newProvider(api embeddingsAPI, breaker *circuit.Breaker) *Provider {
	return &Provider{
		api:     api,
		breaker: breaker,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EmbedText normalizes text and generates its embedding, retrying
// transient failures. Empty or whitespace-only text yields a zero vector
// without touching the API. The breaker is not consulted: workers use
// this so a queued resume rides out an outage inside the call instead of
// being failed terminally by an open breaker, and their concurrency is
// already bounded by the pool size.
func (p *Provider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	normalized := textx.Normalize(text, textx.DefaultMaxChars)
	if normalized == "" {
		return make([]float32, Dimensions), nil
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		vec, err := p.callAPI(ctx, normalized)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		logx.Warnf("Embedding attempt %d/%d failed: %v", attempt+1, maxAttempts, err)

		if attempt < maxAttempts-1 {
			if err := p.sleep(ctx, backoff(attempt)); err != nil {
				return nil, err
			}
		}
	}

	return nil, ErrRegistry.NewWithCause(CodeRetryExhausted, lastErr)
}

// EmbedTextGuarded is EmbedText behind the circuit breaker: it fails fast
// with an unavailable error while the breaker is open and records every
// attempt's outcome. Request-path callers such as ranking use this so a
// dead upstream doesn't pin request goroutines in retry loops.
func (p *Provider) EmbedTextGuarded(ctx context.Context, text string) ([]float32, error) {
	normalized := textx.Normalize(text, textx.DefaultMaxChars)
	if normalized == "" {
		return make([]float32, Dimensions), nil
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if p.breaker.IsOpen() {
			return nil, ErrUnavailable()
		}

		vec, err := p.callAPI(ctx, normalized)
		if err == nil {
			p.breaker.RecordSuccess()
			return vec, nil
		}
		p.breaker.RecordFailure()
		lastErr = err
		logx.Warnf("Embedding attempt %d/%d failed: %v", attempt+1, maxAttempts, err)

		if attempt < maxAttempts-1 {
			if err := p.sleep(ctx, backoff(attempt)); err != nil {
				return nil, err
			}
		}
	}

	return nil, ErrRegistry.NewWithCause(CodeRetryExhausted, lastErr)
}

func (p *Provider) callAPI(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.api.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model:      Model,
		Dimensions: openai.Int(Dimensions),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, ErrRegistry.New(CodeEmptyResponse)
	}

	embedding64 := resp.Data[0].Embedding
	embedding32 := make([]float32, len(embedding64))
	for i, v := range embedding64 {
		embedding32[i] = float32(v)
	}

	return embedding32, nil
}

// backoff returns 2s, 4s, 8s, 16s... capped at maxBackoff.
func backoff(attempt int) time.Duration {
	d := time.Duration(1<<(attempt+1)) * time.Second
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
