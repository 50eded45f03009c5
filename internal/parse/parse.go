// Package parse converts free-form model replies into recommendation records.
//
// Model output arrives in wildly different shapes: sometimes embedded JSON,
// sometimes labeled fields under numbered items, sometimes loose prose. The
// parser runs a priority-ordered list of strategies and takes the first one
// that yields records, then backfills missing URLs from anywhere in the raw
// text.
package parse

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/shopscout/concierge-cli/internal/model"
)

const (
	// placeholderTitle is used when no usable title can be derived.
	placeholderTitle = "Product Recommendation"

	maxFallbackTitleLen = 100
	maxFallbackDescLen  = 500
)

var (
	urlRe          = regexp.MustCompile(`https?://[^\s)]+`)
	markdownHrefRe = regexp.MustCompile(`\]\((https?://[^)]+)\)`)
	boldSpanRe     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	numberedItemRe = regexp.MustCompile(`\n\s*\d+\.\s+`)
	imageHintExts  = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", "image", "img"}
)

// strategy attempts to extract records from the reply. ok reports whether the
// strategy produced a usable result; false means fall through to the next one.
type strategy struct {
	name string
	fn   func(content string) (records []model.RecommendationRecord, ok bool)
}

var strategies = []strategy{
	{"embedded_json", embeddedJSON},
	{"labeled_lines", labeledLines},
	{"numbered_sections", numberedSections},
	{"single_record", singleRecord},
}

// Records parses a raw model reply into an ordered list of recommendation
// records. Every returned record has a non-empty title. Parsing never fails:
// unparseable input degrades to a single fallback record, and an unexpected
// panic inside a strategy produces an empty list.
func Records(content string) (records []model.RecommendationRecord) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("recovered from parse panic", zap.Any("panic", r))
			records = []model.RecommendationRecord{}
		}
	}()

	records = []model.RecommendationRecord{}
	if strings.TrimSpace(content) == "" {
		return records
	}

	for _, s := range strategies {
		recs, ok := s.fn(content)
		if !ok {
			continue
		}
		zap.L().Debug("parsed model reply",
			zap.String("strategy", s.name),
			zap.Int("records", len(recs)),
		)
		records = recs
		break
	}

	backfillURLs(records, content)
	return records
}

// embeddedJSON handles replies that wrap a JSON payload in prose: the span
// between the first '{' and the last '}' is decoded as either an object with
// a "results" field or a bare array. Records without titles are dropped.
func embeddedJSON(content string) ([]model.RecommendationRecord, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	raw := content[start : end+1]

	var envelope struct {
		Results []model.RecommendationRecord `json:"results"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err == nil && envelope.Results != nil {
		return withTitles(envelope.Results), true
	}

	var list []model.RecommendationRecord
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return withTitles(list), true
	}

	return nil, false
}

func withTitles(records []model.RecommendationRecord) []model.RecommendationRecord {
	kept := make([]model.RecommendationRecord, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Title) != "" {
			kept = append(kept, r)
		}
	}
	return kept
}

// section identifies which record field continuation lines append to.
type section int

const (
	sectionNone section = iota
	sectionTitle
	sectionURL
	sectionImageURL
	sectionDescription
	sectionWhyMatches
	sectionAdditionalInfo
)

// accumulator is the line scanner's state: the record being assembled, the
// currently open section, and whether any field has been touched yet.
type accumulator struct {
	rec     model.RecommendationRecord
	active  bool
	descSet bool
	section section
}

func (a *accumulator) flush(records []model.RecommendationRecord) []model.RecommendationRecord {
	if a.active && strings.TrimSpace(a.rec.Title) != "" {
		records = append(records, a.rec)
	}
	a.rec = model.RecommendationRecord{}
	a.active = false
	a.descSet = false
	a.section = sectionNone
	return records
}

// labeledLines walks the reply line by line, recognizing numbered items, bold
// titles, and "Label: value" fields, treating anything else as continuation
// text for the open section.
func labeledLines(content string) ([]model.RecommendationRecord, bool) {
	var records []model.RecommendationRecord
	var acc accumulator

	for _, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		records = scanLine(&acc, records, line)
	}
	records = acc.flush(records)

	return records, len(records) > 0
}

// scanLine applies the label heuristics to one line, mutating the accumulator
// and flushing a completed record when a new one begins.
func scanLine(acc *accumulator, records []model.RecommendationRecord, line string) []model.RecommendationRecord {
	lower := strings.ToLower(line)

	switch {
	case isNumberedMarker(line):
		records = acc.flush(records)
		if _, after, found := strings.Cut(line, ":"); found {
			title := strings.TrimSpace(strings.Trim(strings.TrimSpace(after), "*"))
			acc.rec.Title = title
			acc.active = true
		} else if parts := strings.Split(line, "**"); len(parts) > 1 {
			acc.rec.Title = strings.TrimSpace(parts[1])
			acc.active = true
		}

	case strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && len(line) > 4:
		records = acc.flush(records)
		acc.rec.Title = strings.TrimSpace(strings.Trim(line, "*"))
		acc.active = true

	case strings.Contains(line, ":") && containsAny(lower, "product", "name", "title"):
		_, after, _ := strings.Cut(line, ":")
		if value := strings.TrimSpace(strings.Trim(strings.TrimSpace(after), "*")); value != "" {
			acc.rec.Title = value
			acc.active = true
			acc.section = sectionTitle
		}

	case strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://"):
		if containsAny(lower, imageHintExts...) {
			acc.rec.ImageURL = line
		} else {
			acc.rec.URL = line
		}
		acc.active = true
		acc.section = sectionURL

	case strings.HasPrefix(lower, "url:"):
		_, after, _ := strings.Cut(line, ":")
		value := strings.TrimSpace(after)
		if strings.HasPrefix(value, "http") {
			acc.rec.URL = value
			acc.active = true
		} else if strings.HasPrefix(value, "[") {
			// Markdown link only when the value is the link itself, not
			// prose that happens to contain one.
			if m := markdownHrefRe.FindStringSubmatch(value); m != nil {
				acc.rec.URL = m[1]
				acc.active = true
			}
		}
		acc.section = sectionURL

	case strings.HasPrefix(lower, "image url:") || strings.HasPrefix(lower, "image:"):
		_, after, _ := strings.Cut(line, ":")
		if value := strings.TrimSpace(after); strings.HasPrefix(value, "http") {
			acc.rec.ImageURL = value
			acc.active = true
		}
		acc.section = sectionImageURL

	case strings.HasPrefix(lower, "description:"):
		_, after, _ := strings.Cut(line, ":")
		acc.rec.Description = strings.TrimSpace(after)
		acc.active = true
		acc.descSet = true
		acc.section = sectionDescription

	case strings.Contains(lower, "why") && strings.Contains(lower, "match"):
		if _, after, found := strings.Cut(line, ":"); found {
			if value := strings.TrimSpace(after); value != "" {
				acc.rec.WhyMatches = value
				acc.active = true
			}
		}
		acc.section = sectionWhyMatches

	case strings.Contains(lower, "additional") || strings.Contains(lower, "information"):
		if _, after, found := strings.Cut(line, ":"); found {
			if value := strings.TrimSpace(after); value != "" {
				acc.rec.AdditionalInfo = joinClause(acc.rec.AdditionalInfo, value)
				acc.active = true
			}
		}
		acc.section = sectionAdditionalInfo

	default:
		appendContinuation(acc, line)
	}

	return records
}

// appendContinuation routes a plain line into whichever field is open.
// With no open section, it starts the description if none exists yet.
func appendContinuation(acc *accumulator, line string) {
	if !acc.active {
		return
	}
	switch {
	case acc.section == sectionDescription || (acc.section == sectionNone && !acc.descSet):
		acc.rec.Description = joinClause(acc.rec.Description, line)
		acc.descSet = true
	case acc.section == sectionWhyMatches:
		acc.rec.WhyMatches = joinClause(acc.rec.WhyMatches, line)
	case acc.section == sectionAdditionalInfo:
		acc.rec.AdditionalInfo = joinClause(acc.rec.AdditionalInfo, line)
	}
}

// isNumberedMarker reports whether the line opens a numbered list item, e.g.
// "1. Product ..." or "2: ...". Only the first three characters are checked.
func isNumberedMarker(line string) bool {
	if line == "" || line[0] < '0' || line[0] > '9' {
		return false
	}
	head := line
	if len(head) > 3 {
		head = head[:3]
	}
	return strings.Contains(head, ".") || strings.Contains(head, ":")
}

// numberedSections is the first fallback: split the reply on numbered-item
// markers and squeeze a title, URL, and description out of each section.
func numberedSections(content string) ([]model.RecommendationRecord, bool) {
	sections := numberedItemRe.Split(content, -1)
	if len(sections) <= 1 {
		return nil, false
	}

	var records []model.RecommendationRecord
	for _, sectionText := range sections[1:] {
		var rec model.RecommendationRecord

		if urls := urlRe.FindAllString(sectionText, -1); len(urls) > 0 {
			rec.URL = urls[0]
		}

		lines := strings.Split(sectionText, "\n")
		firstLine := strings.TrimSpace(lines[0])
		rec.Title = sectionTitleFrom(firstLine)

		var descLines []string
		for _, l := range lines[1:] {
			if trimmed := strings.TrimSpace(l); trimmed != "" {
				descLines = append(descLines, trimmed)
			}
		}
		if desc := strings.Join(descLines, "\n"); desc != "" {
			rec.Description = truncate(desc, maxFallbackDescLen)
		}

		records = append(records, rec)
	}

	return records, len(records) > 0
}

var labelPrefixRe = regexp.MustCompile(`(?i)^(Product|Name|Title):?\s*`)

func sectionTitleFrom(firstLine string) string {
	if before, _, found := strings.Cut(firstLine, ":"); found {
		title := labelPrefixRe.ReplaceAllString(strings.TrimSpace(before), "")
		if title == "" {
			return placeholderTitle
		}
		return title
	}
	if m := boldSpanRe.FindStringSubmatch(firstLine); m != nil {
		return strings.TrimSpace(m[1])
	}
	if firstLine != "" {
		return truncate(firstLine, maxFallbackTitleLen)
	}
	return placeholderTitle
}

// singleRecord is the last resort: one record covering the whole reply.
func singleRecord(content string) ([]model.RecommendationRecord, bool) {
	title := placeholderTitle
	if m := boldSpanRe.FindStringSubmatch(content); m != nil {
		title = strings.TrimSpace(m[1])
	}

	description := content
	if len(description) > maxFallbackDescLen {
		description = truncate(description, maxFallbackDescLen) + "..."
	}

	var url string
	if urls := urlRe.FindAllString(content, -1); len(urls) > 0 {
		url = urls[0]
	}

	return []model.RecommendationRecord{{
		Title:       title,
		Description: description,
		URL:         url,
		Relevance:   1.0,
	}}, true
}

// backfillURLs assigns URLs found anywhere in the raw reply, in order and
// without reuse, to records that still lack one.
func backfillURLs(records []model.RecommendationRecord, content string) {
	urls := urlRe.FindAllString(content, -1)
	next := 0
	for i := range records {
		if records[i].URL != "" {
			continue
		}
		if next >= len(urls) {
			break
		}
		records[i].URL = urls[next]
		next++
	}
}

func joinClause(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + " " + addition
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
