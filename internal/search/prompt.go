package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopscout/concierge-cli/internal/model"
)

// Request carries everything the search entry point needs for one call.
type Request struct {
	Query     string
	Answers   map[string]string
	Questions []model.Question
	UserID    string
	TimeoutMS int
}

// BuildPrompt composes the narrative search prompt: the restated want, one
// line per preference answer, conditional directives keyed off the query's
// wording, and a closing instruction. Deterministic, no I/O.
func BuildPrompt(req Request) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "User wants: %s\n\nUser Preferences:\n", req.Query)
	texts := model.TextByID(req.Questions)
	for _, id := range orderedAnswerIDs(req) {
		label := texts[id]
		if label == "" {
			label = id
		}
		fmt.Fprintf(&sb, "- %s: %s\n", label, req.Answers[id])
	}
	sb.WriteString("\nPlease search for relevant products and provide recommendations based on these preferences.\n")

	lower := strings.ToLower(req.Query)
	if strings.Contains(lower, "top") || strings.Contains(lower, "best") {
		sb.WriteString("\nReturn the top results ranked by relevance and quality.")
	}
	if strings.Contains(lower, "haven't") || strings.Contains(lower, "didn't") || strings.Contains(lower, "not") {
		sb.WriteString("\nExclude items the user has already purchased or watched.")
		if req.UserID != "" {
			fmt.Fprintf(&sb, "\nUser ID: %s (check purchase/watch history if available)", req.UserID)
		}
	}

	sb.WriteString("\n\nProvide a clear, structured list of recommendations with titles, descriptions, and relevant details.")
	return sb.String()
}

// BuildSearchQuery flattens the query and preferences into a single line the
// model is told to open its tool call with.
func BuildSearchQuery(req Request) string {
	parts := []string{req.Query}
	texts := model.TextByID(req.Questions)
	for _, id := range orderedAnswerIDs(req) {
		if text := texts[id]; text != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", text, req.Answers[id]))
		}
	}
	return strings.Join(parts, " ")
}

// orderedAnswerIDs walks answers in question order, then any answers to
// unknown question ids in sorted order, so prompt output is stable.
func orderedAnswerIDs(req Request) []string {
	ids := make([]string, 0, len(req.Answers))
	seen := make(map[string]bool, len(req.Answers))
	for _, q := range req.Questions {
		if _, ok := req.Answers[q.ID]; ok && !seen[q.ID] {
			ids = append(ids, q.ID)
			seen[q.ID] = true
		}
	}
	var rest []string
	for id := range req.Answers {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}
