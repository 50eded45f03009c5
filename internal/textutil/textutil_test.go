package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanSnippet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "markdown_link_replaced_with_text",
			in:   "See [the product page](https://shop.example.com/p/1) for details",
			want: "See the product page for details",
		},
		{
			name: "headings_and_emphasis_stripped",
			in:   "## Overview\n**Great** shoes for *daily* runs",
			want: "Overview Great shoes for daily runs",
		},
		{
			name: "whitespace_collapsed",
			in:   "lots   of\t\twhitespace\n\nhere",
			want: "lots of whitespace here",
		},
		{
			name: "escaped_newlines_removed",
			in:   `first\nsecond`,
			want: "first second",
		},
		{
			name: "only_markup_yields_empty",
			in:   "## ** **",
			want: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CleanSnippet(tt.in, DefaultMaxSnippetLen))
		})
	}
}

func TestCleanSnippetTruncatesAtSentenceBoundary(t *testing.T) {
	t.Parallel()

	// First sentence ends well past the boundary threshold; the rest pushes
	// the total over the max length.
	first := strings.Repeat("a", 150) + "."
	in := first + " " + strings.Repeat("b", 300)

	got := CleanSnippet(in, DefaultMaxSnippetLen)
	assert.Equal(t, first, got)
	assert.True(t, strings.HasSuffix(got, "."))
}

func TestCleanSnippetHardTruncatesWithEllipsis(t *testing.T) {
	t.Parallel()

	// No sentence boundary anywhere: expect a hard cut plus ellipsis.
	in := strings.Repeat("x", 600)
	got := CleanSnippet(in, DefaultMaxSnippetLen)
	require.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, strings.Repeat("x", DefaultMaxSnippetLen)+"…", got)
}

func TestCleanSnippetMultibyteTruncation(t *testing.T) {
	t.Parallel()

	// Byte 400 lands in the middle of the two-byte "é"; the cut must back up
	// to the rune boundary, never emit a dangling UTF-8 lead byte.
	in := strings.Repeat("x", 399) + "éclair délicieux et léger pour le petit déjeuner"
	got := CleanSnippet(in, DefaultMaxSnippetLen)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("x", 399)+"…", got)
}

func TestCleanSnippetIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Comfortable running shoes with good arch support.",
		"See [link](http://x.test) and **bold** text",
		strings.Repeat("a", 150) + ". " + strings.Repeat("b", 400),
	}
	for _, in := range inputs {
		once := CleanSnippet(in, DefaultMaxSnippetLen)
		twice := CleanSnippet(once, DefaultMaxSnippetLen)
		assert.Equal(t, once, twice, "cleaning must be a fixed point for %q", in)
	}
}

func TestExtractHighlights(t *testing.T) {
	t.Parallel()

	text := "intro line\n- first **bullet**\n* second bullet\n3. third item\nplain line"
	got := ExtractHighlights(text, DefaultMaxHighlights)
	require.Len(t, got, 3)
	assert.Equal(t, "first bullet", got[0])
	assert.Equal(t, "second bullet", got[1])
	assert.Equal(t, "third item", got[2])
}

func TestExtractHighlightsCapped(t *testing.T) {
	t.Parallel()

	text := "- one\n- two\n- three\n- four\n- five\n- six"
	got := ExtractHighlights(text, 4)
	assert.Len(t, got, 4)
	assert.Equal(t, []string{"one", "two", "three", "four"}, got)
}

func TestExtractHighlightsNoneFound(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ExtractHighlights("just prose\nno bullets here", DefaultMaxHighlights))
	assert.Nil(t, ExtractHighlights("", DefaultMaxHighlights))
}
