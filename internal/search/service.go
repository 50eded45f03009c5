// Package search runs the sandboxed product search: it provisions an
// execution sandbox wired to the Exa search tool, asks the Groq model to call
// that tool before answering, parses the model's prose into recommendation
// records, and enriches them with the raw tool output.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shopscout/concierge-cli/internal/config"
	"github.com/shopscout/concierge-cli/internal/cost"
	"github.com/shopscout/concierge-cli/internal/fuse"
	"github.com/shopscout/concierge-cli/internal/model"
	"github.com/shopscout/concierge-cli/internal/parse"
	"github.com/shopscout/concierge-cli/internal/resilience"
	"github.com/shopscout/concierge-cli/pkg/e2b"
	"github.com/shopscout/concierge-cli/pkg/groq"
)

const (
	// maxAttempts bounds search retries.
	maxAttempts = 3

	temperature = 0.4
	maxTokens   = 1800

	// defaultTimeoutSecs is the sandbox lifetime when the caller passes none.
	defaultTimeoutSecs = 600

	mcpServerLabel = "exa-sandbox"
)

const systemPrompt = "You are a senior shopping concierge. " +
	"Always call the `exa_search` MCP tool to gather fresh product data " +
	"before answering the user. Carefully read the tool output and extract " +
	"accurate titles, URLs, and image links."

const userPromptTemplate = "%s\n\n" +
	"When you call `exa_search`, start with the following query (you may refine it if needed):\n%s\n\n" +
	"After retrieving results, produce 3-6 recommendations in a numbered list. " +
	"For each result, include Title, Description, URL, Image URL (if available), " +
	"Why It Matches, and Additional Information. The URL must be a direct buy link."

// Service drives sandboxed searches.
type Service struct {
	cfg       *config.Config
	groq      groq.Client
	sandboxes e2b.Client
	costs     *cost.Calculator
	retry     resilience.Config
}

// New creates a search Service using the given provider clients.
func New(cfg *config.Config, groqClient groq.Client, sandboxClient e2b.Client) *Service {
	return &Service{
		cfg:       cfg,
		groq:      groqClient,
		sandboxes: sandboxClient,
		costs:     cost.NewCalculator(cost.DefaultRates()),
		retry: resilience.Config{
			MaxAttempts:    maxAttempts,
			InitialBackoff: 2 * time.Second,
			Multiplier:     2.0,
			OnRetry:        resilience.RetryLogger("groq", "search"),
		},
	}
}

// Search performs the sandboxed search with bounded retries. It never
// returns an error for remote or configuration failures: the outcome is
// always reported through the SearchResult envelope.
func (s *Service) Search(ctx context.Context, req Request) model.SearchResult {
	records, err := resilience.Run(ctx, s.retry, func(ctx context.Context) resilience.Outcome[[]model.RecommendationRecord] {
		return s.attempt(ctx, req)
	})
	if err != nil {
		zap.L().Warn("search failed", zap.Error(err), zap.String("query", req.Query))
		return model.Failure(err.Error())
	}

	if records == nil {
		records = []model.RecommendationRecord{}
	}
	return model.SearchResult{Success: true, Results: records}
}

// attempt performs one full search pass: credential pre-flight, sandbox
// provisioning, the tool-calling model request, parsing, and fusion. The
// sandbox is released exactly once on every exit path; a failed release is
// logged and swallowed so it cannot change the attempt's outcome.
func (s *Service) attempt(ctx context.Context, req Request) resilience.Outcome[[]model.RecommendationRecord] {
	if err := s.checkCredentials(); err != nil {
		return resilience.ValidationFailure[[]model.RecommendationRecord](err)
	}

	sandboxSecs := timeoutSecs(req.TimeoutMS)
	sandbox, err := s.sandboxes.Create(ctx, e2b.CreateRequest{
		MCP:         map[string]e2b.MCPServer{"exa": {APIKey: s.cfg.Exa.Key}},
		TimeoutSecs: sandboxSecs,
	})
	if err != nil {
		return resilience.TransientFailure[[]model.RecommendationRecord](eris.Wrap(err, "create sandbox"))
	}
	defer func() {
		if killErr := s.sandboxes.Kill(ctx, sandbox.SandboxID); killErr != nil {
			zap.L().Warn("failed to release sandbox",
				zap.String("sandbox_id", sandbox.SandboxID),
				zap.Error(killErr),
			)
		}
	}()

	zap.L().Debug("sandbox ready",
		zap.String("sandbox_id", sandbox.SandboxID),
		zap.String("mcp_base", sandbox.MCPHTTPBase()),
	)

	prompt := BuildPrompt(req)
	searchQuery := BuildSearchQuery(req)
	temp := temperature
	tokens := maxTokens

	resp, err := s.groq.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: s.cfg.Groq.Model,
		Messages: []groq.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPromptTemplate, prompt, searchQuery)},
		},
		Temperature: &temp,
		MaxTokens:   &tokens,
		Tools:       []groq.Tool{groq.MCPTool(mcpServerLabel, sandbox.MCPURL, sandbox.MCPToken)},
		ToolChoice:  "auto",
	})
	if err != nil {
		return resilience.TransientFailure[[]model.RecommendationRecord](eris.Wrap(err, "groq api error"))
	}

	zap.L().Debug("groq usage",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Float64("estimated_cost_usd", s.costs.GroqChat(s.cfg.Groq.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)),
	)

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	records := parse.Records(content)

	secondary, exaCalls := extractSecondary(resp)
	if len(secondary) > 0 {
		zap.L().Debug("captured secondary search results", zap.Int("count", len(secondary)))
		fuse.Enrich(records, secondary)
	} else {
		zap.L().Debug("no secondary search results captured")
	}

	// Sandbox cost is an upper bound based on the requested lifetime.
	zap.L().Debug("search tooling overhead",
		zap.Int("exa_calls", exaCalls),
		zap.Float64("exa_cost_usd", s.costs.ExaSearches(exaCalls)),
		zap.Float64("sandbox_cost_usd", s.costs.Sandbox(sandboxSecs)),
	)

	zap.L().Info("search attempt complete",
		zap.Int("records", len(records)),
		zap.String("query", req.Query),
	)
	return resilience.Success(records)
}

// checkCredentials verifies every remote credential before the first remote
// call of an attempt. Missing credentials are terminal, never retried.
func (s *Service) checkCredentials() error {
	switch {
	case s.cfg.E2B.Key == "":
		return eris.New("configuration error: e2b api key is not set")
	case s.cfg.Exa.Key == "":
		return eris.New("configuration error: exa api key is not set")
	case s.cfg.Groq.Key == "":
		return eris.New("configuration error: groq api key is not set")
	}
	return nil
}

// timeoutSecs converts the caller's millisecond timeout to the sandbox's
// second granularity: floored, minimum one second, defaulting when unset.
func timeoutSecs(ms int) int {
	if ms <= 0 {
		return defaultTimeoutSecs
	}
	secs := ms / 1000
	if secs < 1 {
		secs = 1
	}
	return secs
}
