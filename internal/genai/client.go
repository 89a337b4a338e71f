// Package genai wraps the Genkit generation API behind a small client
// suitable for injection: callers hand it a composed prompt and get the
// completion text back.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds one generation round trip.
const DefaultTimeout = 60 * time.Second

// defaultRate allows a sustained request per second with a small burst,
// enough headroom for interactive use without tripping provider quotas.
var defaultRate = rate.NewLimiter(rate.Limit(1), 4)

// Client generates completions through a configured Genkit instance.
type Client struct {
	g       *genkit.Genkit
	model   string
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLimiter replaces the default request rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithTimeout sets the per-request generation timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client that generates with the given model name, for
// example "googleai/gemini-2.5-flash".
func New(g *genkit.Genkit, model string, opts ...Option) *Client {
	c := &Client{
		g:       g,
		model:   model,
		limiter: defaultRate,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate produces a completion for prompt. The call waits for the
// rate limiter, then runs under the client timeout; both respect ctx.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	gctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	response, err := genkit.Generate(gctx, c.g,
		ai.WithModelName(c.model),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generating with %s: %w", c.model, err)
	}

	text := strings.TrimSpace(response.Text())
	c.logger.Debug("generated completion",
		"model", c.model, "prompt_chars", len(prompt),
		"response_chars", len(text), "elapsed", time.Since(started))
	return text, nil
}
