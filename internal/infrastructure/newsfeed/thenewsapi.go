package newsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"Zenframe/internal/domain"
	"Zenframe/internal/ports"
)

const (
	theNewsAPIBaseURL = "https://api.thenewsapi.com"
	theNewsAPIPath    = "/v1/news/all"
	maxPageSize       = 100
	errorBodyLimit    = 512
)

var _ ports.FeedClient = (*TheNewsAPIClient)(nil)

// TheNewsAPIOptions configures the thenewsapi.com client.
type TheNewsAPIOptions struct {
	BaseURL string
	Token   string
	// PageSizeParam is the query key carrying the page size, "page_size" by default.
	PageSizeParam string
	Timeout       time.Duration
}

// TheNewsAPIClient fetches paged article listings from thenewsapi.com.
type TheNewsAPIClient struct {
	client        *http.Client
	baseURL       string
	token         string
	pageSizeParam string
}

// NewTheNewsAPIClient wires an HTTP client; a nil client gets the configured timeout (10s default).
func NewTheNewsAPIClient(client *http.Client, opts TheNewsAPIOptions) *TheNewsAPIClient {
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = theNewsAPIBaseURL
	}
	param := opts.PageSizeParam
	if param == "" {
		param = "page_size"
	}
	return &TheNewsAPIClient{
		client:        client,
		baseURL:       base,
		token:         opts.Token,
		pageSizeParam: param,
	}
}

// Name identifies the provider inside the registry.
func (c *TheNewsAPIClient) Name() string {
	return "thenewsapi"
}

type newsResponse struct {
	Data []newsItem `json:"data"`
}

type newsItem struct {
	Title       string          `json:"title"`
	URL         string          `json:"url"`
	Content     string          `json:"content"`
	Description string          `json:"description"`
	Snippet     string          `json:"snippet"`
	Source      json.RawMessage `json:"source"`
	Categories  []string        `json:"categories"`
	PublishedAt string          `json:"published_at"`
}

type sourceDescriptor struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// FetchPage requests one page; every failure is returned as *domain.FeedFailure.
func (c *TheNewsAPIClient) FetchPage(ctx context.Context, page int, language string, pageSize int) ([]domain.RawArticle, error) {
	if page < 1 {
		page = 1
	}

	pageURL, err := c.buildPageURL(page, language, clampPageSize(pageSize))
	if err != nil {
		return nil, &domain.FeedFailure{Page: page, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &domain.FeedFailure{Page: page, Cause: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Zenframe/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.FeedFailure{Page: page, Cause: fmt.Errorf("request page: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &domain.FeedFailure{
			Page:       page,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(snippet))),
		}
	}

	var payload newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &domain.FeedFailure{Page: page, StatusCode: resp.StatusCode, Cause: fmt.Errorf("decode page: %w", err)}
	}

	articles := make([]domain.RawArticle, 0, len(payload.Data))
	for _, item := range payload.Data {
		articles = append(articles, item.toRaw())
	}
	return articles, nil
}

func (c *TheNewsAPIClient) buildPageURL(page int, language string, pageSize int) (string, error) {
	u, err := url.Parse(c.baseURL + theNewsAPIPath)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("api_token", c.token)
	if language != "" {
		q.Set("language", language)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set(c.pageSizeParam, strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func clampPageSize(n int) int {
	switch {
	case n < 1:
		return 1
	case n > maxPageSize:
		return maxPageSize
	default:
		return n
	}
}

func (i newsItem) toRaw() domain.RawArticle {
	return domain.RawArticle{
		SourceURL:      strings.TrimSpace(i.URL),
		Title:          i.Title,
		BodyCandidates: []string{i.Content, i.Description, i.Snippet},
		SourceLabel:    sourceLabel(i.Source),
		Categories:     i.Categories,
		PublishedAt:    parsePublished(i.PublishedAt),
	}
}

// sourceLabel accepts either a plain string or a {name, domain} descriptor.
func sourceLabel(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		return strings.TrimSpace(label)
	}
	var desc sourceDescriptor
	if err := json.Unmarshal(raw, &desc); err == nil {
		if desc.Name != "" {
			return strings.TrimSpace(desc.Name)
		}
		return strings.TrimSpace(desc.Domain)
	}
	return ""
}

func parsePublished(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000000Z", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
