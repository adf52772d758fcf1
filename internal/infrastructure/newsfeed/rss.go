package newsfeed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"Zenframe/internal/domain"
	"Zenframe/internal/ports"
)

var _ ports.FeedClient = (*RSSClient)(nil)

// RSSClient reads a single RSS/Atom feed. The feed has no paging, so only page 1 has items.
type RSSClient struct {
	parser *gofeed.Parser
	url    string
}

// NewRSSClient builds a client for the feed at url.
func NewRSSClient(url string) *RSSClient {
	parser := gofeed.NewParser()
	parser.UserAgent = "Zenframe/1.0"
	return &RSSClient{parser: parser, url: url}
}

// Name identifies the provider inside the registry.
func (c *RSSClient) Name() string {
	return "rss"
}

// FetchPage parses the feed; language and pageSize are ignored except that at most pageSize items are returned.
func (c *RSSClient) FetchPage(ctx context.Context, page int, _ string, pageSize int) ([]domain.RawArticle, error) {
	if page > 1 {
		return nil, nil
	}

	feed, err := c.parser.ParseURLWithContext(c.url, ctx)
	if err != nil {
		failure := &domain.FeedFailure{Page: page, Cause: fmt.Errorf("parse feed: %w", err)}
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			failure.StatusCode = httpErr.StatusCode
		}
		return nil, failure
	}

	items := feed.Items
	if pageSize > 0 && len(items) > pageSize {
		items = items[:pageSize]
	}

	articles := make([]domain.RawArticle, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		raw := domain.RawArticle{
			SourceURL:      strings.TrimSpace(item.Link),
			Title:          item.Title,
			BodyCandidates: []string{item.Content, item.Description},
			SourceLabel:    feed.Title,
			Categories:     item.Categories,
		}
		if item.PublishedParsed != nil {
			raw.PublishedAt = item.PublishedParsed.UTC()
		}
		articles = append(articles, raw)
	}
	return articles, nil
}
