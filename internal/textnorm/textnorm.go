// Package textnorm turns provider markup into plain text and short excerpts.
package textnorm

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
)

// fallbackRunes is the excerpt length used when no sentence boundary is found.
const fallbackRunes = 200

const maxUnescapePasses = 4

var tagPattern = regexp.MustCompile(`(?s)<[^>]+>`)

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "td": true, "th": true, "section": true, "article": true,
	"blockquote": true, "header": true, "footer": true,
}

// Clean decodes entities, then removes markup and collapses whitespace. Entity-encoded
// tags are stripped like literal ones; a '<' that never closes is kept as text.
func Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := unescape(raw)
	if !tagPattern.MatchString(text) {
		return collapse(text)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return collapse(tagPattern.ReplaceAllString(text, " "))
	}

	var b strings.Builder
	for _, n := range doc.Nodes {
		writeText(&b, n)
	}
	return collapse(tagPattern.ReplaceAllString(b.String(), " "))
}

// unescape decodes repeatedly so double-encoded entities also end up as text.
func unescape(s string) string {
	for i := 0; i < maxUnescapePasses; i++ {
		decoded := html.UnescapeString(s)
		if decoded == s {
			break
		}
		s = decoded
	}
	return s
}

func writeText(b *strings.Builder, n *xhtml.Node) {
	switch n.Type {
	case xhtml.TextNode:
		b.WriteString(n.Data)
		return
	case xhtml.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}

	block := n.Type == xhtml.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte(' ')
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Summarize returns the first n sentences of the cleaned text. Without any
// sentence terminator it falls back to the leading 200 characters.
func Summarize(text string, n int) string {
	cleaned := Clean(text)
	if cleaned == "" || n <= 0 {
		return ""
	}

	sentences := splitSentences(cleaned)
	if len(sentences) == 0 {
		return TruncateRunes(cleaned, fallbackRunes)
	}
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	return strings.Join(sentences, " ")
}

// splitSentences splits after '.', '!' or '?' followed by whitespace. A trailing
// fragment without a terminator is kept only when at least one full sentence exists.
func splitSentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if len(out) == 0 {
		return nil
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}

// TruncateRunes cuts s to at most max runes without splitting a multi-byte character.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:max]))
}
