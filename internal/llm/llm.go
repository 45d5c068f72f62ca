// Package llm provides the text-to-SQL generation capability.
// It adapts a hosted chat-completion API behind a narrow Generator interface
// so the rest of the system never touches provider specifics.
package llm

import (
	"context"
)

// Params are the fixed model parameters, enumerated at configuration time.
type Params struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// DefaultParams returns the default generation parameters.
func DefaultParams() Params {
	return Params{
		Model:       "gpt-4o-mini",
		Temperature: 0,
		MaxTokens:   512,
	}
}

// Generator produces a raw completion for a natural-language query.
// Transport-level failures surface as errors; content validation is the
// guard's job, not the generator's.
type Generator interface {
	Generate(ctx context.Context, query string) (string, error)
}

// systemPrompt instructs the model to answer with the JSON object the guard
// validates. The shape mirrors the schema in internal/guard.
const systemPrompt = `You are a SQL code generator. Translate the user's natural-language ` +
	`request into a single SQL query. Respond with exactly one JSON object of the form ` +
	`{"generated_sql": "<SQL>"} and nothing else. Do not add explanations or markdown.`
