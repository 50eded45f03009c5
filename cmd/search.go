package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/shopscout/concierge-cli/internal/model"
	"github.com/shopscout/concierge-cli/internal/search"
)

var (
	searchQuery         string
	searchAnswers       map[string]string
	searchQuestionsFile string
	searchUserID        string
	searchTimeoutMS     int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for product recommendations",
	Long:  "Runs a sandboxed web search for the query and preference answers, then prints the recommendation envelope as JSON. Failures are reported inside the envelope, not as a non-zero exit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var qs []model.Question
		if searchQuestionsFile != "" {
			data, err := os.ReadFile(searchQuestionsFile)
			if err != nil {
				return eris.Wrap(err, "read questions file")
			}
			if err := json.Unmarshal(data, &qs); err != nil {
				return eris.Wrap(err, "parse questions file")
			}
		}

		timeout := searchTimeoutMS
		if timeout == 0 {
			timeout = cfg.Search.TimeoutMS
		}

		result := newSearcher().Search(ctx, search.Request{
			Query:     searchQuery,
			Answers:   searchAnswers,
			Questions: qs,
			UserID:    searchUserID,
			TimeoutMS: timeout,
		})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchQuery, "query", "", "shopping query (required)")
	searchCmd.Flags().StringToStringVar(&searchAnswers, "answer", nil, "preference answer as questionID=answer (repeatable)")
	searchCmd.Flags().StringVar(&searchQuestionsFile, "questions-file", "", "JSON file with the questions the answers refer to")
	searchCmd.Flags().StringVar(&searchUserID, "user-id", "", "user identifier for history-aware queries")
	searchCmd.Flags().IntVar(&searchTimeoutMS, "timeout-ms", 0, "sandbox timeout in milliseconds (default from config)")
	_ = searchCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(searchCmd)
}
