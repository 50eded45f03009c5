package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRates() Rates {
	return Rates{
		OpenAI: map[string]ModelRate{
			"gpt-3.5-turbo": {Input: 0.50, Output: 1.50},
		},
		Groq: map[string]ModelRate{
			"llama-3.3-70b-versatile": {Input: 0.59, Output: 0.79},
		},
		Exa: ExaRate{PerSearch: 0.005},
		E2B: E2BRate{PerHour: 0.36},
	}
}

func TestOpenAIChat(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(testRates())

	tests := []struct {
		name   string
		model  string
		input  int
		output int
		want   float64
	}{
		{
			name:  "simple",
			model: "gpt-3.5-turbo",
			input: 1_000_000, output: 100_000,
			want: 0.50 + 0.15, // 0.50 input + 0.15 output
		},
		{
			name:  "unknown model returns 0",
			model: "unknown",
			input: 1_000_000, output: 1_000_000,
			want: 0,
		},
		{
			name:  "zero tokens returns 0",
			model: "gpt-3.5-turbo",
			want:  0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := calc.OpenAIChat(tt.model, tt.input, tt.output)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestGroqChat(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(testRates())

	// in: 0.5M/1M * 0.59 = 0.295
	// out: 0.1M/1M * 0.79 = 0.079
	got := calc.GroqChat("llama-3.3-70b-versatile", 500_000, 100_000)
	assert.InDelta(t, 0.295+0.079, got, 0.001)

	assert.Zero(t, calc.GroqChat("unknown", 1_000_000, 1_000_000))
}

func TestExaSearches(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(testRates())

	assert.InDelta(t, 0.005, calc.ExaSearches(1), 0.0001)
	assert.InDelta(t, 0.025, calc.ExaSearches(5), 0.0001)
	assert.Zero(t, calc.ExaSearches(0))
}

func TestSandbox(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(testRates())

	tests := []struct {
		name string
		secs int
		want float64
	}{
		{"one hour", 3600, 0.36},
		{"ten minutes", 600, 0.06},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, calc.Sandbox(tt.secs), 0.0001)
		})
	}
}

func TestDefaultRates(t *testing.T) {
	t.Parallel()
	rates := DefaultRates()

	assert.Contains(t, rates.OpenAI, "gpt-3.5-turbo")
	assert.Contains(t, rates.Groq, "llama-3.3-70b-versatile")
	assert.InDelta(t, 0.005, rates.Exa.PerSearch, 0.001)
	assert.Greater(t, rates.E2B.PerHour, 0.0)
}
