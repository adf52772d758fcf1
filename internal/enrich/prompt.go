package enrich

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"Zenframe/internal/classify"
	"Zenframe/internal/textnorm"
)

// SchemaVersion tags the JSON contract the model is asked to follow.
const SchemaVersion = "v1"

const defaultBodyLimit = 1000

// BuildPrompt renders the single-turn instruction for one article.
func BuildPrompt(title, body string, bodyLimit int) string {
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimit
	}

	var b strings.Builder
	b.WriteString("Rewrite the following news headline and give a positive-tone 2-sentence summary.\n")
	b.WriteString("Then rate how positive the story is and pick its topic.\n")
	b.WriteString("Answer with a single JSON object and nothing else:\n")
	fmt.Fprintf(&b, `{"schema":"%s","headline":"<rewritten headline, max 15 words>",`, SchemaVersion)
	b.WriteString(`"summary":"<exactly 2 sentences>","positivity":<integer 0-100>,"category":"<one of: `)
	b.WriteString(strings.Join(classify.Categories(), ", "))
	b.WriteString(`>"}`)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Original headline: %s\n", title)
	fmt.Fprintf(&b, "Article text: %s\n", textnorm.TruncateRunes(body, bodyLimit))
	return b.String()
}

// CacheKey identifies an enrichment by prompt contract and article content.
func CacheKey(title, body string) string {
	sum := sha256.Sum256([]byte(SchemaVersion + "\n" + title + "\n" + body))
	return hex.EncodeToString(sum[:])
}
