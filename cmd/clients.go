package main

import (
	"github.com/shopscout/concierge-cli/internal/questions"
	"github.com/shopscout/concierge-cli/internal/search"
	"github.com/shopscout/concierge-cli/pkg/e2b"
	"github.com/shopscout/concierge-cli/pkg/groq"
	"github.com/shopscout/concierge-cli/pkg/openai"
)

// newGenerator wires the question generator from config.
func newGenerator() *questions.Generator {
	client := openai.NewClient(cfg.OpenAI.Key,
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
		openai.WithModel(cfg.OpenAI.Model),
	)
	return questions.New(cfg.OpenAI, client)
}

// newSearcher wires the search service from config.
func newSearcher() *search.Service {
	groqClient := groq.NewClient(cfg.Groq.Key,
		groq.WithBaseURL(cfg.Groq.BaseURL),
		groq.WithModel(cfg.Groq.Model),
	)
	sandboxClient := e2b.NewClient(cfg.E2B.Key, e2b.WithBaseURL(cfg.E2B.BaseURL))
	return search.New(cfg, groqClient, sandboxClient)
}
