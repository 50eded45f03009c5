package parse

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsEmbeddedJSON(t *testing.T) {
	t.Parallel()

	content := `Here are the results: {"results":[{"title":"A","url":"http://x"}]}`
	records := Records(content)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].Title)
	assert.Equal(t, "http://x", records[0].URL)
}

func TestRecordsEmbeddedJSONDropsUntitled(t *testing.T) {
	t.Parallel()

	content := `{"results":[{"title":"Keep","url":"http://keep.test"},{"url":"http://orphan.test"}]}`
	records := Records(content)
	require.Len(t, records, 1)
	assert.Equal(t, "Keep", records[0].Title)
}

func TestRecordsJSONWithoutResultsFieldFallsThrough(t *testing.T) {
	t.Parallel()

	// A JSON object without a "results" array is not a result payload; the
	// text scanner should take over.
	content := "{\"note\":\"nothing\"}\n1. Product: Backup Shoe\nDescription: still parsed"
	records := Records(content)
	require.Len(t, records, 1)
	assert.Equal(t, "Backup Shoe", records[0].Title)
	assert.Equal(t, "still parsed", records[0].Description)
}

func TestRecordsLabeledLines(t *testing.T) {
	t.Parallel()

	content := "1. Product: Shoe\nDescription: comfy\nhttps://img.png\nhttps://shoe.com"
	records := Records(content)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Shoe", rec.Title)
	assert.Equal(t, "comfy", rec.Description)
	assert.True(t, strings.HasSuffix(rec.ImageURL, "img.png"))
	assert.Equal(t, "https://shoe.com", rec.URL)
}

func TestRecordsLabeledLinesMultiple(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"1. Product: Trail Runner",
		"Description: grippy sole",
		"and a roomy toe box",
		"URL: [buy here](https://store.test/trail)",
		"Why It Matches: you asked for trails",
		"Additional Information: ships next day",
		"2. **City Sneaker**",
		"Image URL: https://cdn.test/city.webp",
		"Description: sleek",
	}, "\n")

	records := Records(content)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Trail Runner", first.Title)
	assert.Equal(t, "grippy sole and a roomy toe box", first.Description)
	assert.Equal(t, "https://store.test/trail", first.URL)
	assert.Equal(t, "you asked for trails", first.WhyMatches)
	assert.Equal(t, "ships next day", first.AdditionalInfo)

	second := records[1]
	assert.Equal(t, "City Sneaker", second.Title)
	assert.Equal(t, "https://cdn.test/city.webp", second.ImageURL)
	assert.Equal(t, "sleek", second.Description)
}

func TestRecordsBoldTitleStartsRecord(t *testing.T) {
	t.Parallel()

	content := "**Aero Max**\nDescription: light\n**Cloud Nine**\nDescription: plush"
	records := Records(content)
	require.Len(t, records, 2)
	assert.Equal(t, "Aero Max", records[0].Title)
	assert.Equal(t, "light", records[0].Description)
	assert.Equal(t, "Cloud Nine", records[1].Title)
	assert.Equal(t, "plush", records[1].Description)
}

func TestRecordsContinuationDefaultsToDescription(t *testing.T) {
	t.Parallel()

	content := "1. Product: Everyday Flat\nA versatile shoe for daily wear\nthat pairs with anything"
	records := Records(content)
	require.Len(t, records, 1)
	assert.Equal(t, "Everyday Flat", records[0].Title)
	assert.Equal(t, "A versatile shoe for daily wear that pairs with anything", records[0].Description)
}

func TestRecordsWhyMatchesContinuation(t *testing.T) {
	t.Parallel()

	content := "Product: Gel Lyte\nWhy It Matches:\nbuilt for narrow feet\nand wet roads"
	records := Records(content)
	require.Len(t, records, 1)
	assert.Equal(t, "built for narrow feet and wet roads", records[0].WhyMatches)
}

func TestRecordsNumberedSectionFallback(t *testing.T) {
	t.Parallel()

	// No recognizable labels, so the labeled scan yields nothing and the
	// numbered-section fallback takes over.
	content := "Top picks for you\n1. Great running shoe\nVery comfy for long runs\nhttps://shoe.example.com\n2. Solid walking shoe\nGood arch support"
	records := Records(content)
	require.Len(t, records, 2)

	assert.Equal(t, "Great running shoe", records[0].Title)
	assert.Equal(t, "https://shoe.example.com", records[0].URL)
	assert.Contains(t, records[0].Description, "Very comfy")

	assert.Equal(t, "Solid walking shoe", records[1].Title)
	assert.Contains(t, records[1].Description, "Good arch support")
	// The URL backfill pool is consumed by position, so the second record
	// receives the first pooled URL even though record one already carries it.
	assert.Equal(t, "https://shoe.example.com", records[1].URL)
}

func TestRecordsSingleFallback(t *testing.T) {
	t.Parallel()

	content := "I could not find anything specific for that request, sorry about that."
	records := Records(content)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Product Recommendation", rec.Title)
	assert.Equal(t, content, rec.Description)
	assert.Empty(t, rec.URL)
	assert.InDelta(t, 1.0, rec.Relevance, 0.001)
}

func TestRecordsSingleFallbackBoldTitleAndTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("w", 600)
	content := "**Nike Pegasus** " + long
	records := Records(content)
	require.Len(t, records, 1)
	assert.Equal(t, "Nike Pegasus", records[0].Title)
	assert.Len(t, records[0].Description, maxFallbackDescLen+3)
	assert.True(t, strings.HasSuffix(records[0].Description, "..."))
}

func TestRecordsSingleFallbackMultibyteTruncation(t *testing.T) {
	t.Parallel()

	// Byte 500 lands in the middle of the two-byte "é"; the cut must back up
	// to the rune boundary instead of emitting a dangling lead byte.
	content := strings.Repeat("x", 499) + "éclair délicieux et confortable, un choix superbe"
	records := Records(content)
	require.Len(t, records, 1)

	desc := records[0].Description
	assert.True(t, utf8.ValidString(desc))
	assert.True(t, strings.HasSuffix(desc, "x..."))
}

func TestRecordsURLLabelMarkdownGating(t *testing.T) {
	t.Parallel()

	// A URL: value that merely mentions a markdown link is prose, not the
	// link itself; the bare URL set earlier must survive.
	content := "1. Product: Widget\nhttps://buy.test/widget\nURL: see [manual](https://docs.test/widget)"
	records := Records(content)
	require.Len(t, records, 1)
	assert.Equal(t, "https://buy.test/widget", records[0].URL)
}

func TestRecordsURLBackfill(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"1. Product: Alpha",
		"Description: first",
		"2. Product: Beta",
		"Description: second",
		"Sources: https://alpha.example.com and https://beta.example.com",
	}, "\n")

	records := Records(content)
	require.Len(t, records, 2)
	assert.Equal(t, "https://alpha.example.com", records[0].URL)
	assert.Equal(t, "https://beta.example.com", records[1].URL)
}

func TestRecordsEmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Records(""))
	assert.Empty(t, Records("   \n  "))
}

func TestImageURLClassification(t *testing.T) {
	t.Parallel()

	content := "Product: Cam\nhttps://cdn.example.com/products/cam-image\nhttps://shop.example.com/cam"
	records := Records(content)
	require.Len(t, records, 1)
	assert.Equal(t, "https://cdn.example.com/products/cam-image", records[0].ImageURL)
	assert.Equal(t, "https://shop.example.com/cam", records[0].URL)
}
