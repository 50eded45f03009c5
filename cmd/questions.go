package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	questionsQuery   string
	questionsCount   int
	questionsAnswers int
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Generate clarifying questions for a shopping query",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		count := questionsCount
		if count == 0 {
			count = cfg.Questions.Count
		}
		answers := questionsAnswers
		if answers == 0 {
			answers = cfg.Questions.AnswersPerQuestion
		}

		generated, err := newGenerator().Generate(ctx, questionsQuery, count, answers)
		if err != nil {
			return eris.Wrap(err, "generate questions")
		}

		zap.L().Info("questions ready",
			zap.String("query", questionsQuery),
			zap.Int("count", len(generated)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(generated)
	},
}

func init() {
	questionsCmd.Flags().StringVar(&questionsQuery, "query", "", "shopping query (required)")
	questionsCmd.Flags().IntVar(&questionsCount, "count", 0, "number of questions (default from config)")
	questionsCmd.Flags().IntVar(&questionsAnswers, "answers", 0, "answer options per question (default from config)")
	_ = questionsCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(questionsCmd)
}
