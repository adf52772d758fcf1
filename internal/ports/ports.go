package ports

import (
	"context"

	"Zenframe/internal/domain"
)

// FeedClient pulls one page of raw articles from an upstream news provider.
type FeedClient interface {
	Name() string
	FetchPage(ctx context.Context, page int, language string, pageSize int) ([]domain.RawArticle, error)
}

// ChatClient sends a single-turn prompt to a language-model provider and returns the text reply.
type ChatClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Enricher rewrites and classifies an article; it always returns a storable result.
type Enricher interface {
	Analyse(ctx context.Context, title, body string) domain.Enrichment
}

// EnrichmentCache remembers successful enrichments by content key.
type EnrichmentCache interface {
	Get(ctx context.Context, key string) (domain.Enrichment, bool, error)
	Set(ctx context.Context, key string, enrichment domain.Enrichment) error
}

// ArticleRepository is the write side of the news store, keyed by source URL.
type ArticleRepository interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, article domain.EnrichedArticle) (bool, error)
}

// NewsReader serves stored articles to the API.
type NewsReader interface {
	List(ctx context.Context, filter domain.ListFilter) ([]domain.EnrichedArticle, error)
	Get(ctx context.Context, id string) (domain.EnrichedArticle, error)
}

// CommentRepository stores reader comments per article.
type CommentRepository interface {
	AddComment(ctx context.Context, comment domain.Comment) (string, error)
	ListComments(ctx context.Context, newsID string) ([]domain.Comment, error)
}

// UserRepository stores API accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) (string, error)
	UserByEmail(ctx context.Context, email string) (domain.User, error)
}

// Store groups everything the API and pipeline need from persistence.
type Store interface {
	ArticleRepository
	NewsReader
	CommentRepository
	UserRepository
}

// Scheduler controls when the ingestion job executes.
type Scheduler interface {
	Start(ctx context.Context, job func(context.Context)) error
	Stop(ctx context.Context) error
}
