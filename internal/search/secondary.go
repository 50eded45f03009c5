package search

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/shopscout/concierge-cli/internal/model"
	"github.com/shopscout/concierge-cli/pkg/groq"
)

// exaResult mirrors one entry of the Exa tool's JSON output.
type exaResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Image   string `json:"image"`
	Favicon string `json:"favicon"`
	Text    string `json:"text"`
}

type exaOutput struct {
	Results []exaResult `json:"results"`
}

// extractSecondary pulls structured search hits out of the executed-tool
// records attached to the model's reply, and reports how many Exa calls the
// model made. Only Exa tool calls are considered; outputs that fail to decode
// are skipped, never fatal.
func extractSecondary(resp *groq.ChatCompletionResponse) ([]model.SecondaryResult, int) {
	var secondary []model.SecondaryResult
	calls := 0
	for _, choice := range resp.Choices {
		for _, tool := range choice.Message.ExecutedTools {
			if !strings.Contains(strings.ToLower(tool.Name), "exa") {
				continue
			}
			calls++
			if tool.Output == "" {
				continue
			}

			var out exaOutput
			if err := json.Unmarshal([]byte(tool.Output), &out); err != nil {
				zap.L().Debug("skipping undecodable tool output",
					zap.String("tool", tool.Name),
					zap.Error(err),
				)
				continue
			}

			for _, r := range out.Results {
				title := r.Title
				if title == "" {
					title = r.ID
				}
				image := r.Image
				if image == "" {
					image = r.Favicon
				}
				secondary = append(secondary, model.SecondaryResult{
					Title:    title,
					URL:      r.URL,
					ImageURL: image,
					Text:     r.Text,
				})
			}
		}
	}
	return secondary, calls
}
