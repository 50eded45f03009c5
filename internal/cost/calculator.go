package cost

// Rates holds per-provider pricing configuration.
type Rates struct {
	OpenAI map[string]ModelRate `yaml:"openai" mapstructure:"openai"`
	Groq   map[string]ModelRate `yaml:"groq" mapstructure:"groq"`
	Exa    ExaRate              `yaml:"exa" mapstructure:"exa"`
	E2B    E2BRate              `yaml:"e2b" mapstructure:"e2b"`
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// ExaRate holds Exa search pricing.
type ExaRate struct {
	PerSearch float64 `yaml:"per_search" mapstructure:"per_search"`
}

// E2BRate holds sandbox pricing.
type E2BRate struct {
	PerHour float64 `yaml:"per_hour" mapstructure:"per_hour"`
}

// Calculator computes estimated costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// OpenAIChat computes the cost for an OpenAI chat completion.
func (c *Calculator) OpenAIChat(model string, input, output int) float64 {
	return chatCost(c.rates.OpenAI, model, input, output)
}

// GroqChat computes the cost for a Groq chat completion.
func (c *Calculator) GroqChat(model string, input, output int) float64 {
	return chatCost(c.rates.Groq, model, input, output)
}

// ExaSearches returns the cost of n search queries.
func (c *Calculator) ExaSearches(n int) float64 {
	return float64(n) * c.rates.Exa.PerSearch
}

// Sandbox returns the cost of a sandbox alive for the given seconds.
func (c *Calculator) Sandbox(secs int) float64 {
	return (float64(secs) / 3600) * c.rates.E2B.PerHour
}

func chatCost(rates map[string]ModelRate, model string, input, output int) float64 {
	rate, ok := rates[model]
	if !ok {
		return 0
	}
	return (float64(input)/1e6)*rate.Input + (float64(output)/1e6)*rate.Output
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		OpenAI: map[string]ModelRate{
			"gpt-3.5-turbo": {Input: 0.50, Output: 1.50},
			"gpt-4o-mini":   {Input: 0.15, Output: 0.60},
			"gpt-4o":        {Input: 2.50, Output: 10.00},
		},
		Groq: map[string]ModelRate{
			"llama-3.3-70b-versatile": {Input: 0.59, Output: 0.79},
			"llama-3.1-8b-instant":    {Input: 0.05, Output: 0.08},
		},
		Exa: ExaRate{PerSearch: 0.005},
		E2B: E2BRate{PerHour: 0.10},
	}
}
