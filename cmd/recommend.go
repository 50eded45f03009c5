package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/shopscout/concierge-cli/internal/model"
	"github.com/shopscout/concierge-cli/internal/search"
)

var (
	recommendQuery     string
	recommendUserID    string
	recommendTimeoutMS int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Interactive end-to-end recommendation flow",
	Long:  "Generates clarifying questions, collects answers on the terminal, then searches and prints the recommendations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		qs, err := newGenerator().Generate(ctx, recommendQuery, cfg.Questions.Count, cfg.Questions.AnswersPerQuestion)
		if err != nil {
			return eris.Wrap(err, "generate questions")
		}

		answers, err := collectAnswers(cmd, qs)
		if err != nil {
			return err
		}

		timeout := recommendTimeoutMS
		if timeout == 0 {
			timeout = cfg.Search.TimeoutMS
		}

		result := newSearcher().Search(ctx, search.Request{
			Query:     recommendQuery,
			Answers:   answers,
			Questions: qs,
			UserID:    recommendUserID,
			TimeoutMS: timeout,
		})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// collectAnswers prompts for each question in turn. The user picks an option
// by number; a blank line skips the question.
func collectAnswers(cmd *cobra.Command, qs []model.Question) (map[string]string, error) {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	answers := make(map[string]string, len(qs))
	for _, q := range qs {
		fmt.Fprintf(out, "\n%s\n", q.Text)
		for i, a := range q.Answers {
			fmt.Fprintf(out, "  %d) %s\n", i+1, a)
		}
		fmt.Fprintf(out, "> ")

		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		pick, err := strconv.Atoi(line)
		if err != nil || pick < 1 || pick > len(q.Answers) {
			answers[q.ID] = line
			continue
		}
		answers[q.ID] = q.Answers[pick-1]
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "read answers")
	}
	return answers, nil
}

func init() {
	recommendCmd.Flags().StringVar(&recommendQuery, "query", "", "shopping query (required)")
	recommendCmd.Flags().StringVar(&recommendUserID, "user-id", "", "user identifier for history-aware queries")
	recommendCmd.Flags().IntVar(&recommendTimeoutMS, "timeout-ms", 0, "sandbox timeout in milliseconds (default from config)")
	_ = recommendCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(recommendCmd)
}
