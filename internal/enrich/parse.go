package enrich

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"Zenframe/internal/classify"
	"Zenframe/internal/domain"
	"Zenframe/internal/textnorm"
)

type wireResponse struct {
	Schema     *string         `json:"schema"`
	Headline   string          `json:"headline"`
	Summary    string          `json:"summary"`
	Positivity json.RawMessage `json:"positivity"`
	Category   *string         `json:"category"`
}

// ParseResponse validates a model reply against the v1 schema. Any violation yields
// *domain.EnrichmentParseError; nothing is partially trusted.
func ParseResponse(raw string) (domain.Enrichment, error) {
	body := extractJSON(raw)
	if body == "" {
		return domain.Enrichment{}, parseErr(raw, "no JSON object found")
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()

	var wire wireResponse
	if err := dec.Decode(&wire); err != nil {
		return domain.Enrichment{}, parseErr(raw, err.Error())
	}

	if wire.Schema != nil && *wire.Schema != SchemaVersion {
		return domain.Enrichment{}, parseErr(raw, fmt.Sprintf("unsupported schema %q", *wire.Schema))
	}

	headline := strings.TrimSpace(wire.Headline)
	if headline == "" {
		return domain.Enrichment{}, parseErr(raw, "headline is empty")
	}
	summary := strings.TrimSpace(wire.Summary)
	if summary == "" {
		return domain.Enrichment{}, parseErr(raw, "summary is empty")
	}
	if wire.Category == nil {
		return domain.Enrichment{}, parseErr(raw, "category is missing")
	}

	score, err := parsePositivity(wire.Positivity)
	if err != nil {
		return domain.Enrichment{}, parseErr(raw, err.Error())
	}

	return domain.Enrichment{
		Headline:   textnorm.TruncateRunes(headline, domain.MaxHeadlineRunes),
		Summary:    summary,
		Positivity: classify.Positivity(score),
		Category:   classify.Category(*wire.Category),
		Enriched:   true,
	}, nil
}

// parsePositivity requires the field to be present. Whatever value it carries is handed to
// the normalizer, which clamps numbers and defaults values that are not numeric.
func parsePositivity(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.New("positivity is missing")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("positivity: %w", err)
	}
	return v, nil
}

// extractJSON strips code fences and surrounding prose down to the outermost braces.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func parseErr(raw, reason string) *domain.EnrichmentParseError {
	return &domain.EnrichmentParseError{Reason: reason, Raw: raw}
}
