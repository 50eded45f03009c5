// Package questions generates clarifying multiple-choice questions for a
// shopping query via an LLM call with schema validation and bounded retries.
package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shopscout/concierge-cli/internal/config"
	"github.com/shopscout/concierge-cli/internal/cost"
	"github.com/shopscout/concierge-cli/internal/model"
	"github.com/shopscout/concierge-cli/internal/resilience"
	"github.com/shopscout/concierge-cli/pkg/openai"
)

const (
	// maxAttempts bounds question-generation retries.
	maxAttempts = 4

	temperature = 0.7
	maxTokens   = 500
)

const systemPrompt = "You generate survey questions. Always return valid JSON."

const promptTemplate = `Given this user request: "%s"

Generate %d multiple choice questions to understand their preferences.
Each question should have exactly %d answer options.

Return ONLY valid JSON in this exact format:
{
  "questions": [
    {
      "id": "q1",
      "text": "Question text?",
      "answers": ["Option 1", "Option 2", "Option 3"]
    }
  ]
}

Requirements:
- Clear, specific questions
- Exactly %d answers per question
- Concise answer options (2-4 words)
- Relevant to the user's request
- Use IDs: q1, q2, q3, etc.`

// BuildPrompt renders the user prompt for generating numQuestions questions
// with numAnswers answer options each. Pure function of its inputs.
func BuildPrompt(userQuery string, numQuestions, numAnswers int) string {
	return fmt.Sprintf(promptTemplate, userQuery, numQuestions, numAnswers, numAnswers)
}

// Generator drives question generation against the OpenAI provider.
type Generator struct {
	cfg      config.OpenAIConfig
	client   openai.Client
	validate *validator.Validate
	costs    *cost.Calculator
	retry    resilience.Config
}

// New creates a Generator using the given provider client.
func New(cfg config.OpenAIConfig, client openai.Client) *Generator {
	return &Generator{
		cfg:      cfg,
		client:   client,
		validate: validator.New(),
		costs:    cost.NewCalculator(cost.DefaultRates()),
		retry: resilience.Config{
			MaxAttempts:    maxAttempts,
			InitialBackoff: time.Second,
			Multiplier:     2.0,
			OnRetry:        resilience.RetryLogger("openai", "generate_questions"),
		},
	}
}

// Generate returns numQuestions validated questions with numAnswers options
// each. Transient provider faults are retried with exponential backoff;
// malformed or schema-invalid replies abort immediately. A missing credential
// is detected before any remote call.
func (g *Generator) Generate(ctx context.Context, userQuery string, numQuestions, numAnswers int) ([]model.Question, error) {
	if g.cfg.Key == "" {
		return nil, eris.New("questions: openai api key is not configured")
	}
	if numQuestions < 1 || numAnswers < 1 {
		return nil, eris.Errorf("questions: invalid counts: %d questions, %d answers", numQuestions, numAnswers)
	}

	prompt := BuildPrompt(userQuery, numQuestions, numAnswers)

	result, err := resilience.Run(ctx, g.retry, func(ctx context.Context) resilience.Outcome[[]model.Question] {
		return g.attempt(ctx, prompt, numQuestions, numAnswers)
	})
	if err != nil {
		return nil, eris.Wrap(err, "questions: generate")
	}

	zap.L().Info("generated questions",
		zap.Int("count", len(result)),
		zap.String("query", userQuery),
	)
	return result, nil
}

// attempt performs one remote call and classifies its outcome.
func (g *Generator) attempt(ctx context.Context, prompt string, numQuestions, numAnswers int) resilience.Outcome[[]model.Question] {
	temp := temperature
	tokens := maxTokens

	resp, err := g.client.ChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    &temp,
		MaxTokens:      &tokens,
		ResponseFormat: openai.JSONObject,
	})
	if err != nil {
		return resilience.TransientFailure[[]model.Question](eris.Wrap(err, "openai api error"))
	}

	zap.L().Debug("openai usage",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Float64("estimated_cost_usd", g.costs.OpenAIChat(g.cfg.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)),
	)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return resilience.ValidationFailure[[]model.Question](eris.New("empty response from openai"))
	}
	content := resp.Choices[0].Message.Content

	var parsed model.QuestionsResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return resilience.ValidationFailure[[]model.Question](eris.Wrap(err, "invalid JSON response"))
	}
	if len(parsed.Questions) == 0 {
		return resilience.ValidationFailure[[]model.Question](eris.New("invalid response structure: missing or invalid 'questions' array"))
	}
	if err := g.validate.Struct(&parsed); err != nil {
		return resilience.ValidationFailure[[]model.Question](eris.Wrap(err, "validation error"))
	}
	if err := checkShape(parsed.Questions, numQuestions, numAnswers); err != nil {
		return resilience.ValidationFailure[[]model.Question](err)
	}

	return resilience.Success(parsed.Questions)
}

// checkShape enforces the requested question and answer counts and the
// sequential q1..qN identifiers the prompt demands.
func checkShape(questions []model.Question, numQuestions, numAnswers int) error {
	if len(questions) != numQuestions {
		return eris.Errorf("expected %d questions, got %d", numQuestions, len(questions))
	}
	for i, q := range questions {
		if wantID := fmt.Sprintf("q%d", i+1); q.ID != wantID {
			return eris.Errorf("question %d has id %q, expected %q", i+1, q.ID, wantID)
		}
		if len(q.Answers) != numAnswers {
			return eris.Errorf("question %q has %d answers, expected %d", q.ID, len(q.Answers), numAnswers)
		}
	}
	return nil
}
