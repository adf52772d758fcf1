package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"Zenframe/internal/classify"
	"Zenframe/internal/domain"
	"Zenframe/internal/metrics"
	"Zenframe/internal/ports"
	"Zenframe/internal/textnorm"
)

// Article outcomes recorded per processed feed item.
const (
	outcomeInserted = "inserted"
	outcomeUpdated  = "updated"
	outcomeSkipped  = "skipped"
	outcomeFailed   = "failed"
)

// PipelineOptions controls paging through the feed.
type PipelineOptions struct {
	Language  string
	MaxPages  int
	PageSize  int
	PagePause time.Duration
}

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Feed       ports.FeedClient
	Enricher   ports.Enricher
	Repository ports.ArticleRepository
	Metrics    *metrics.Pipeline
	Logger     *slog.Logger
	Options    PipelineOptions
}

// CycleReport summarizes the most recent ingestion cycle.
type CycleReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Pages      int       `json:"pages"`
	Fetched    int       `json:"fetched"`
	Skipped    int       `json:"skipped"`
	Inserted   int       `json:"inserted"`
	Updated    int       `json:"updated"`
	Failed     int       `json:"failed"`
	FeedError  string    `json:"feed_error,omitempty"`
}

// Pipeline implements the ingestion cycle: fetch pages, clean, enrich, normalize and upsert.
type Pipeline struct {
	feed       ports.FeedClient
	enricher   ports.Enricher
	repository ports.ArticleRepository
	metrics    *metrics.Pipeline
	logger     *slog.Logger
	opts       PipelineOptions

	running atomic.Bool
	wait    func(ctx context.Context, d time.Duration) error

	mu   sync.RWMutex
	last *CycleReport
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := deps.Options
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}

	return &Pipeline{
		feed:       deps.Feed,
		enricher:   deps.Enricher,
		repository: deps.Repository,
		metrics:    deps.Metrics,
		logger:     logger,
		opts:       opts,
		wait:       sleepContext,
	}
}

// RunCycle pulls up to MaxPages pages and stores every usable article. A feed failure stops
// paging but keeps what was already stored; the count of newly inserted records is returned.
// A concurrent call returns domain.ErrCycleInProgress.
func (p *Pipeline) RunCycle(ctx context.Context) (int, error) {
	if !p.running.CompareAndSwap(false, true) {
		p.metrics.CycleFinished(metrics.CycleSkipped, 0)
		return 0, domain.ErrCycleInProgress
	}
	defer p.running.Store(false)

	report := CycleReport{StartedAt: time.Now().UTC()}
	seen := make(map[string]struct{})
	result := metrics.CycleOK
	var cycleErr error

pages:
	for page := 1; page <= p.opts.MaxPages; page++ {
		articles, err := p.feed.FetchPage(ctx, page, p.opts.Language, p.opts.PageSize)
		if err != nil {
			p.logger.Error("feed request failed, stopping cycle",
				"feed", p.feed.Name(),
				"page", page,
				"error", err,
			)
			report.FeedError = err.Error()
			result = metrics.CycleFeedFailure
			break
		}
		report.Pages++

		if len(articles) == 0 {
			p.logger.Debug("feed returned an empty page", "page", page)
			break
		}
		report.Fetched += len(articles)

		for _, raw := range articles {
			if err := ctx.Err(); err != nil {
				p.logger.Warn("ingestion cycle interrupted", "page", page, "error", err)
				cycleErr = err
				result = metrics.CycleError
				break pages
			}
			p.processArticle(ctx, raw, seen, &report)
		}

		if page < p.opts.MaxPages {
			if err := p.wait(ctx, p.opts.PagePause); err != nil {
				cycleErr = err
				result = metrics.CycleError
				break
			}
		}
	}

	report.FinishedAt = time.Now().UTC()
	p.setLastReport(report)
	p.metrics.CycleFinished(result, report.FinishedAt.Sub(report.StartedAt))

	p.logger.Info("ingestion cycle finished",
		"pages", report.Pages,
		"fetched", report.Fetched,
		"inserted", report.Inserted,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)

	return report.Inserted, cycleErr
}

// LastReport returns the report of the last finished cycle, if any.
func (p *Pipeline) LastReport() (CycleReport, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return CycleReport{}, false
	}
	return *p.last, true
}

func (p *Pipeline) setLastReport(r CycleReport) {
	p.mu.Lock()
	p.last = &r
	p.mu.Unlock()
}

func (p *Pipeline) processArticle(ctx context.Context, raw domain.RawArticle, seen map[string]struct{}, report *CycleReport) {
	url := strings.TrimSpace(raw.SourceURL)
	if url == "" {
		p.logger.Debug("skipping article without url", "title", raw.Title)
		p.record(report, outcomeSkipped)
		return
	}
	if _, dup := seen[url]; dup {
		p.record(report, outcomeSkipped)
		return
	}
	seen[url] = struct{}{}

	title := textnorm.Clean(raw.Title)
	body := textnorm.Clean(raw.Body())

	enrichment := p.enricher.Analyse(ctx, title, body)

	category := classify.Category(enrichment.Category)
	if !enrichment.Enriched {
		category = categoryHint(raw)
	}

	article := domain.EnrichedArticle{
		SourceURL:    url,
		Headline:     textnorm.TruncateRunes(enrichment.Headline, domain.MaxHeadlineRunes),
		Excerpt:      enrichment.Summary,
		Positivity:   classify.Positivity(enrichment.Positivity),
		Category:     category,
		FullBody:     body,
		OrigHeadline: title,
		Enriched:     enrichment.Enriched,
	}

	inserted, err := p.repository.Upsert(ctx, article)
	switch {
	case errors.Is(err, domain.ErrDuplicateKey):
		p.record(report, outcomeUpdated)
	case err != nil:
		p.logger.Error("store article failed", "url", url, "error", err)
		p.record(report, outcomeFailed)
	case inserted:
		p.record(report, outcomeInserted)
	default:
		p.record(report, outcomeUpdated)
	}
}

func (p *Pipeline) record(report *CycleReport, outcome string) {
	switch outcome {
	case outcomeInserted:
		report.Inserted++
	case outcomeUpdated:
		report.Updated++
	case outcomeSkipped:
		report.Skipped++
	case outcomeFailed:
		report.Failed++
	}
	p.metrics.Article(outcome)
}

// categoryHint maps provider categories, then the source label, onto the closed set.
func categoryHint(raw domain.RawArticle) string {
	for _, c := range raw.Categories {
		if hint := classify.Category(c); hint != classify.DefaultCategory {
			return hint
		}
	}
	return classify.Category(raw.SourceLabel)
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
