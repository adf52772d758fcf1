// Package classify normalizes model and feed output into the stored score and topic.
package classify

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// NeutralPositivity is used whenever a score is missing or unusable.
	NeutralPositivity = 50
	// DefaultCategory is the catch-all topic.
	DefaultCategory = "other"
)

// known is the closed topic set in matching order.
var known = []string{
	"world",
	"politics",
	"business",
	"tech",
	"science",
	"health",
	"sports",
	"entertainment",
	"travel",
	"lifestyle",
}

// Positivity converts an arbitrary score value into an integer in [0, 100].
func Positivity(v any) int {
	switch n := v.(type) {
	case int:
		return clamp(n)
	case int8:
		return clamp(int(n))
	case int16:
		return clamp(int(n))
	case int32:
		return clamp(int(n))
	case int64:
		return clamp64(float64(n))
	case uint:
		return clamp64(float64(n))
	case uint8:
		return clamp(int(n))
	case uint16:
		return clamp(int(n))
	case uint32:
		return clamp64(float64(n))
	case uint64:
		return clamp64(float64(n))
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return NeutralPositivity
		}
		return fromFloat(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return NeutralPositivity
		}
		return fromFloat(f)
	default:
		return NeutralPositivity
	}
}

func fromFloat(f float64) int {
	if math.IsNaN(f) {
		return NeutralPositivity
	}
	return clamp64(math.Round(f))
}

func clamp64(f float64) int {
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	default:
		return int(f)
	}
}

func clamp(n int) int {
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	default:
		return n
	}
}

// Category maps a free-form label onto the closed topic set.
func Category(raw string) string {
	label := strings.ToLower(strings.TrimSpace(raw))
	if label == "" {
		return DefaultCategory
	}
	if IsCategory(label) {
		return label
	}
	for _, c := range known {
		if strings.Contains(label, c) {
			return c
		}
	}
	return DefaultCategory
}

// IsCategory reports whether s is exactly one of the stored topics, "other" included.
func IsCategory(s string) bool {
	if s == DefaultCategory {
		return true
	}
	for _, c := range known {
		if s == c {
			return true
		}
	}
	return false
}

// Categories lists every stored topic.
func Categories() []string {
	out := make([]string, 0, len(known)+1)
	out = append(out, known...)
	return append(out, DefaultCategory)
}
