package enrich

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"Zenframe/internal/classify"
	"Zenframe/internal/domain"
	"Zenframe/internal/metrics"
	"Zenframe/internal/ports"
	"Zenframe/internal/textnorm"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
	fallbackSentences  = 2
)

var _ ports.Enricher = (*Invoker)(nil)

// Options tunes the invoker; zero values select defaults.
type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	BodyLimit   int
	Cache       ports.EnrichmentCache
	Metrics     *metrics.Pipeline
	Logger      *slog.Logger
}

// Invoker asks the language model to rewrite and classify an article, retrying malformed
// or failed replies and falling back to a heuristic when attempts run out.
type Invoker struct {
	chat        ports.ChatClient
	cache       ports.EnrichmentCache
	metrics     *metrics.Pipeline
	logger      *slog.Logger
	maxAttempts int
	baseDelay   time.Duration
	bodyLimit   int
	wait        func(ctx context.Context, d time.Duration) error
}

// NewInvoker wires a chat client; a nil client makes every call take the fallback.
func NewInvoker(chat ports.ChatClient, opts Options) *Invoker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	bodyLimit := opts.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimit
	}

	return &Invoker{
		chat:        chat,
		cache:       opts.Cache,
		metrics:     opts.Metrics,
		logger:      logger,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		bodyLimit:   bodyLimit,
		wait:        sleepContext,
	}
}

// Analyse never fails: when the model cannot produce a valid answer the result is built
// from the original title and a heuristic summary, with Enriched set to false.
func (i *Invoker) Analyse(ctx context.Context, title, body string) domain.Enrichment {
	if i.chat == nil {
		i.metrics.Enrichment(metrics.EnrichmentFallback)
		return Fallback(title, body)
	}

	key := CacheKey(title, body)
	if cached, ok := i.lookup(ctx, key); ok {
		i.metrics.Enrichment(metrics.EnrichmentCacheHit)
		return cached
	}

	prompt := BuildPrompt(title, body, i.bodyLimit)

	for attempt := 1; attempt <= i.maxAttempts; attempt++ {
		i.metrics.EnrichmentAttempt()

		result, err := i.attempt(ctx, prompt, attempt)
		if err == nil {
			i.store(ctx, key, result)
			i.metrics.Enrichment(metrics.EnrichmentSuccess)
			return result
		}

		i.logger.Warn("enrichment attempt failed",
			"attempt", attempt,
			"max_attempts", i.maxAttempts,
			"title", textnorm.TruncateRunes(title, 80),
			"error", err,
		)

		if attempt == i.maxAttempts {
			break
		}
		if err := i.wait(ctx, time.Duration(attempt)*i.baseDelay); err != nil {
			i.logger.Warn("enrichment retries aborted", "error", err)
			break
		}
	}

	i.metrics.Enrichment(metrics.EnrichmentFallback)
	return Fallback(title, body)
}

func (i *Invoker) attempt(ctx context.Context, prompt string, attempt int) (domain.Enrichment, error) {
	raw, err := i.chat.Complete(ctx, prompt)
	if err != nil {
		return domain.Enrichment{}, err
	}

	result, err := ParseResponse(raw)
	if err != nil {
		var perr *domain.EnrichmentParseError
		if errors.As(err, &perr) {
			perr.Attempt = attempt
		}
		return domain.Enrichment{}, err
	}
	return result, nil
}

func (i *Invoker) lookup(ctx context.Context, key string) (domain.Enrichment, bool) {
	if i.cache == nil {
		return domain.Enrichment{}, false
	}
	cached, ok, err := i.cache.Get(ctx, key)
	if err != nil {
		i.logger.Warn("enrichment cache lookup failed", "error", err)
		return domain.Enrichment{}, false
	}
	return cached, ok
}

func (i *Invoker) store(ctx context.Context, key string, result domain.Enrichment) {
	if i.cache == nil {
		return
	}
	if err := i.cache.Set(ctx, key, result); err != nil {
		i.logger.Warn("enrichment cache write failed", "error", err)
	}
}

// Fallback builds the degraded enrichment: original title, first two sentences of the body
// (or the title when the body is empty), neutral score and the catch-all category.
func Fallback(title, body string) domain.Enrichment {
	summary := textnorm.Summarize(body, fallbackSentences)
	if summary == "" {
		summary = title
	}
	return domain.Enrichment{
		Headline:   textnorm.TruncateRunes(title, domain.MaxHeadlineRunes),
		Summary:    summary,
		Positivity: classify.NeutralPositivity,
		Category:   classify.DefaultCategory,
		Enriched:   false,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
