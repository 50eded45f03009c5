// Package textutil cleans raw search snippets into compact display text.
package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultMaxSnippetLen bounds cleaned snippet length.
	DefaultMaxSnippetLen = 400

	// DefaultMaxHighlights bounds the number of extracted highlights.
	DefaultMaxHighlights = 4

	// minSentenceBoundary is the shortest prefix at which a sentence-boundary
	// truncation is preferred over a hard cut.
	minSentenceBoundary = 120
)

var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	headingRe      = regexp.MustCompile(`#{1,6}\s*`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	listPrefixRe   = regexp.MustCompile(`^\d+[.)]\s`)
)

// CleanSnippet strips markdown decoration from a raw snippet, collapses
// whitespace and truncates to maxLen, preferring the last sentence boundary
// past minSentenceBoundary. Returns "" for empty or all-markup input.
// Cleaning is a fixed point: applying it to its own output is a no-op.
func CleanSnippet(text string, maxLen int) string {
	if text == "" {
		return ""
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxSnippetLen
	}

	cleaned := norm.NFC.String(text)
	cleaned = markdownLinkRe.ReplaceAllString(cleaned, "$1")
	cleaned = headingRe.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, "*", " ")
	cleaned = strings.ReplaceAll(cleaned, `\n`, " ")
	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
	if cleaned == "" {
		return ""
	}

	if len(cleaned) > maxLen {
		// Back the cut up to a rune boundary so multibyte text stays valid.
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		truncated := cleaned[:cut]
		if lastPeriod := strings.LastIndex(truncated, "."); lastPeriod > minSentenceBoundary {
			cleaned = truncated[:lastPeriod+1]
		} else {
			cleaned = strings.TrimSpace(truncated) + "…"
		}
	}
	return cleaned
}

// ExtractHighlights scans text for bullet or numbered list lines, cleans each
// one, and returns up to max of them. Returns nil when no highlights exist.
func ExtractHighlights(text string, max int) []string {
	if text == "" {
		return nil
	}
	if max <= 0 {
		max = DefaultMaxHighlights
	}

	var highlights []string
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if strings.HasPrefix(stripped, "-") || strings.HasPrefix(stripped, "*") || listPrefixRe.MatchString(stripped) {
			clean := CleanSnippet(strings.TrimLeft(stripped, "-*0123456789. )"), DefaultMaxSnippetLen)
			if clean != "" {
				highlights = append(highlights, clean)
			}
		}
		if len(highlights) >= max {
			break
		}
	}
	return highlights
}
