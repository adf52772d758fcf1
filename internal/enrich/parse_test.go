package enrich

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Zenframe/internal/domain"
)

func TestParseResponseValid(t *testing.T) {
	t.Parallel()

	raw := "Sure! Here you go:\n```json\n" +
		`{"schema":"v1","headline":"  City rallies after quake ","summary":"Neighbours help. Aid arrives.","positivity":72,"category":"World News"}` +
		"\n```"

	got, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.Enrichment{
		Headline:   "City rallies after quake",
		Summary:    "Neighbours help. Aid arrives.",
		Positivity: 72,
		Category:   "world",
		Enriched:   true,
	}, got)
}

func TestParseResponseNormalizes(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 300)
	got, err := ParseResponse(`{"headline":"` + long + `","summary":"s","positivity":150.0,"category":"gibberish"}`)
	require.NoError(t, err)
	assert.Len(t, []rune(got.Headline), domain.MaxHeadlineRunes)
	assert.Equal(t, 100, got.Positivity)
	assert.Equal(t, "other", got.Category)

	got, err = ParseResponse(`{"headline":"h","summary":"s","positivity":-5,"category":"Sci-Tech"}`)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Positivity)
	assert.Equal(t, "tech", got.Category)
}

func TestParseResponseDefaultsNonNumericPositivity(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		`"72"`:   72,
		`"high"`: 50,
		`72.6`:   73,
		`true`:   50,
		`[1]`:    50,
	}
	for value, want := range cases {
		got, err := ParseResponse(`{"headline":"h","summary":"s","positivity":` + value + `,"category":"world"}`)
		require.NoError(t, err, value)
		assert.Equal(t, want, got.Positivity, value)
		assert.Equal(t, "h", got.Headline)
		assert.True(t, got.Enriched)
	}
}

func TestParseResponseRejects(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"no json":            "I cannot help with that.",
		"unknown field":      `{"headline":"h","summary":"s","positivity":1,"category":"world","mood":"calm"}`,
		"wrong schema":       `{"schema":"v2","headline":"h","summary":"s","positivity":1,"category":"world"}`,
		"empty headline":     `{"headline":"  ","summary":"s","positivity":1,"category":"world"}`,
		"missing summary":    `{"headline":"h","positivity":1,"category":"world"}`,
		"missing positivity": `{"headline":"h","summary":"s","category":"world"}`,
		"null positivity":    `{"headline":"h","summary":"s","positivity":null,"category":"world"}`,
		"missing category":   `{"headline":"h","summary":"s","positivity":1}`,
		"truncated":          `{"headline":"h","summary":"s","positivity":1,"category":"world"`,
		"line delimited":     "Better days ahead\nA calm summary.",
	}

	for name, raw := range cases {
		name, raw := name, raw
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseResponse(raw)
			var perr *domain.EnrichmentParseError
			require.True(t, errors.As(err, &perr), "expected EnrichmentParseError, got %v", err)
			assert.Equal(t, raw, perr.Raw)
			assert.NotEmpty(t, perr.Reason)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("б", 1500)
	prompt := BuildPrompt("Quake Strikes City", body, 1000)

	assert.Contains(t, prompt, "Original headline: Quake Strikes City")
	assert.Contains(t, prompt, `"schema":"v1"`)
	assert.Contains(t, prompt, "lifestyle")
	assert.Equal(t, 1000, strings.Count(prompt, "б"))
}

func TestCacheKeyStable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CacheKey("t", "b"), CacheKey("t", "b"))
	assert.NotEqual(t, CacheKey("t", "b"), CacheKey("t\nb", ""))
	assert.Len(t, CacheKey("t", "b"), 64)
}
