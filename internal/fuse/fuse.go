// Package fuse merges raw secondary search hits into parsed recommendation
// records. The model's prose answer often omits URLs and images that the
// search tool itself returned; fusing the two sets recovers them.
package fuse

import (
	"strings"

	"go.uber.org/zap"

	"github.com/shopscout/concierge-cli/internal/model"
	"github.com/shopscout/concierge-cli/internal/textutil"
)

// Enrich fills missing record fields from secondary results. For each record
// that lacks a URL or image it first looks for a title match among unused
// secondary entries, then falls back to assigning the next unused entry
// outright. A secondary entry is consumed by at most one record; records are
// never added, dropped, or reordered.
func Enrich(records []model.RecommendationRecord, secondary []model.SecondaryResult) {
	if len(records) == 0 || len(secondary) == 0 {
		return
	}

	used := make([]bool, len(secondary))

	for i := range records {
		rec := &records[i]

		if rec.URL == "" || rec.ImageURL == "" {
			for j := range secondary {
				if used[j] || !titlesMatch(rec.Title, secondary[j].Title) {
					continue
				}
				fill(rec, &secondary[j])
				used[j] = true
				zap.L().Debug("enriched record from matching secondary result",
					zap.Int("record", i),
					zap.String("title", rec.Title),
				)
				break
			}
		}

		// Fallback: any unused entry is better than a bare record.
		if rec.URL == "" || rec.ImageURL == "" {
			for j := range secondary {
				if used[j] {
					continue
				}
				fill(rec, &secondary[j])
				used[j] = true
				zap.L().Debug("assigned fallback secondary result",
					zap.Int("record", i),
					zap.String("title", rec.Title),
				)
				break
			}
		}
	}
}

// fill copies absent fields from the secondary entry onto the record.
// Present fields are never overwritten.
func fill(rec *model.RecommendationRecord, sec *model.SecondaryResult) {
	if rec.URL == "" && sec.URL != "" {
		rec.URL = sec.URL
	}
	if rec.ImageURL == "" && sec.ImageURL != "" {
		rec.ImageURL = sec.ImageURL
	}
	if rec.Description == "" {
		raw := sec.Description
		if raw == "" {
			raw = sec.Text
		}
		if cleaned := textutil.CleanSnippet(raw, textutil.DefaultMaxSnippetLen); cleaned != "" {
			rec.Description = cleaned
		}
	}
	if rec.Highlights == nil {
		rec.Highlights = textutil.ExtractHighlights(sec.Text, textutil.DefaultMaxHighlights)
	}
}

// titlesMatch reports whether a secondary entry belongs to a record: one
// title contains the other (case-insensitive), or the two share at least two
// words longer than three characters.
func titlesMatch(recordTitle, secondaryTitle string) bool {
	rt := strings.ToLower(strings.TrimSpace(recordTitle))
	st := strings.ToLower(strings.TrimSpace(secondaryTitle))
	if st == "" {
		return false
	}
	if strings.Contains(st, rt) || strings.Contains(rt, st) {
		return true
	}

	shared := 0
	recordWords := significantWords(rt)
	for w := range significantWords(st) {
		if recordWords[w] {
			shared++
			if shared >= 2 {
				return true
			}
		}
	}
	return false
}

func significantWords(title string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(title) {
		if len(w) > 3 {
			words[w] = true
		}
	}
	return words
}
