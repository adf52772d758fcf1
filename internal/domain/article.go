package domain

import (
	"strings"
	"time"
)

// RawArticle is a feed item as delivered by the news provider, before any processing.
type RawArticle struct {
	SourceURL      string
	Title          string
	BodyCandidates []string
	SourceLabel    string
	Categories     []string
	PublishedAt    time.Time
}

// Body returns the first non-empty body candidate (content, description, snippet).
func (a RawArticle) Body() string {
	for _, candidate := range a.BodyCandidates {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

// Enrichment is the result of the language-model rewrite/classify step.
type Enrichment struct {
	Headline   string `json:"headline"`
	Summary    string `json:"summary"`
	Positivity int    `json:"positivity"`
	Category   string `json:"category"`
	// Enriched is false when the record came from the degraded fallback.
	Enriched bool `json:"enriched"`
}

// EnrichedArticle is the persisted record, one per SourceURL.
type EnrichedArticle struct {
	ID           string    `db:"id" json:"id"`
	SourceURL    string    `db:"source_url" json:"source_url"`
	Headline     string    `db:"headline" json:"headline"`
	Excerpt      string    `db:"excerpt" json:"excerpt"`
	Positivity   int       `db:"positivity" json:"positivity"`
	Category     string    `db:"category" json:"category"`
	FullBody     string    `db:"full_body" json:"full_body,omitempty"`
	OrigHeadline string    `db:"orig_headline" json:"orig_headline"`
	Enriched     bool      `db:"enriched" json:"enriched"`
	CreatedDate  time.Time `db:"created_date" json:"created_date"`
}

// MaxHeadlineRunes caps stored headlines.
const MaxHeadlineRunes = 180

// ListFilter narrows the news listing exposed by the API.
type ListFilter struct {
	MinPositivity *int
	Category      string
	Limit         int
	Offset        int
}
