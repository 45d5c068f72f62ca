// Package guard wraps the generation capability with schema and content
// validation. Only output that passes the guard is considered cache-worthy.
package guard

import (
	"context"
	"fmt"

	"github.com/queryforge/queryforge/internal/llm"
)

// Outcome is the result of a guarded generation call: the raw completion,
// the validated structured object (nil on failure), reask info (unused, kept
// for contract parity with the external validation capability), a pass/fail
// flag, and the failure detail.
type Outcome struct {
	Raw       string
	Validated *SQLResponse
	Reask     string
	Passed    bool
	Detail    string
}

// Validator performs an additional content check on a bound SQL statement.
type Validator interface {
	Validate(ctx context.Context, sqlText string) error
}

// Guard wraps a generator with schema binding and optional content validators.
type Guard struct {
	generator  llm.Generator
	validators []Validator
}

// New creates a guard over the given generator.
func New(generator llm.Generator, validators ...Validator) (*Guard, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	return &Guard{
		generator:  generator,
		validators: validators,
	}, nil
}

// Generate invokes the generator and validates its output.
//
// A transport-level failure calling the generator is returned as an error.
// Validation failures are not errors: they come back as an Outcome with
// Passed=false and the reported detail, which the caller surfaces verbatim.
func (g *Guard) Generate(ctx context.Context, query string) (*Outcome, error) {
	raw, err := g.generator.Generate(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generation call: %w", err)
	}

	validated, err := BindSQLResponse(raw)
	if err != nil {
		return &Outcome{
			Raw:    raw,
			Passed: false,
			Detail: err.Error(),
		}, nil
	}

	for _, v := range g.validators {
		if err := v.Validate(ctx, validated.GeneratedSQL); err != nil {
			return &Outcome{
				Raw:    raw,
				Passed: false,
				Detail: err.Error(),
			}, nil
		}
	}

	return &Outcome{
		Raw:       raw,
		Validated: validated,
		Passed:    true,
	}, nil
}
