package web

import (
	"html/template"
	"strings"

	"github.com/dustin/go-humanize"

	"influencerroi/internal/analytics"
)

// Funcs are the formatting helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"money":   Money,
		"count":   Count,
		"ratio":   FormatRatio,
		"percent": Percent,
		"join":    strings.Join,
		"link":    Link,
		"inc":     func(i int) int { return i + 1 },
	}
}

// Money formats an amount with thousands separators and two decimals.
func Money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// Count formats an integer with thousands separators.
func Count(v int64) string {
	return humanize.Comma(v)
}

// FormatRatio renders a ratio with two decimals, or "n/a" when undefined.
func FormatRatio(r analytics.Ratio) string {
	if !r.Valid {
		return "n/a"
	}
	return humanize.FormatFloat("#,###.##", r.Value)
}

// Percent renders a fraction as a percentage with two decimals.
func Percent(v float64) string {
	return humanize.FormatFloat("#,###.##", v*100) + "%"
}

// Link appends an already encoded query to path.
func Link(path, query string) template.URL {
	if query == "" {
		return template.URL(path)
	}
	return template.URL(path + "?" + query)
}
