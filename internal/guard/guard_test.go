package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	output string
	err    error
	calls  int
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	s.calls++
	return s.output, s.err
}

type stubValidator struct {
	err   error
	calls int
	seen  string
}

func (s *stubValidator) Validate(_ context.Context, sqlText string) error {
	s.calls++
	s.seen = sqlText
	return s.err
}

func TestGuardNewRequiresGenerator(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestGuardGeneratePasses(t *testing.T) {
	gen := &stubGenerator{output: `{"generated_sql": "SELECT * FROM users;"}`}
	g, err := New(gen)
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "list all users")
	require.NoError(t, err)
	assert.True(t, out.Passed)
	require.NotNil(t, out.Validated)
	assert.Equal(t, "SELECT * FROM users;", out.Validated.GeneratedSQL)
	assert.Equal(t, gen.output, out.Raw)
	assert.Empty(t, out.Reask)
	assert.Empty(t, out.Detail)
}

func TestGuardGenerateTransportErrorIsError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("connection refused")}
	g, err := New(gen)
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "q")
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "generation call")
}

func TestGuardGenerateSchemaFailureIsOutcome(t *testing.T) {
	gen := &stubGenerator{output: "not json at all"}
	g, err := New(gen)
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.False(t, out.Passed)
	assert.Nil(t, out.Validated)
	assert.Equal(t, "not json at all", out.Raw)
	assert.NotEmpty(t, out.Detail)
}

func TestGuardGenerateValidatorFailureIsOutcome(t *testing.T) {
	gen := &stubGenerator{output: `{"generated_sql": "SELEC * FORM users"}`}
	v := &stubValidator{err: errors.New("syntax error at or near \"SELEC\"")}
	g, err := New(gen, v)
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.False(t, out.Passed)
	assert.Nil(t, out.Validated)
	assert.Contains(t, out.Detail, "SELEC")
	assert.Equal(t, 1, v.calls)
	assert.Equal(t, "SELEC * FORM users", v.seen)
}

func TestGuardGenerateRunsAllValidators(t *testing.T) {
	gen := &stubGenerator{output: `{"generated_sql": "SELECT 1;"}`}
	v1 := &stubValidator{}
	v2 := &stubValidator{}
	g, err := New(gen, v1, v2)
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.True(t, out.Passed)
	assert.Equal(t, 1, v1.calls)
	assert.Equal(t, 1, v2.calls)
}

func TestGuardGenerateStopsAtFirstFailingValidator(t *testing.T) {
	gen := &stubGenerator{output: `{"generated_sql": "SELECT 1;"}`}
	v1 := &stubValidator{err: errors.New("rejected")}
	v2 := &stubValidator{}
	g, err := New(gen, v1, v2)
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.False(t, out.Passed)
	assert.Equal(t, 1, v1.calls)
	assert.Equal(t, 0, v2.calls)
}
