package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qferrors "github.com/queryforge/queryforge/pkg/errors"
)

func TestBindSQLResponseValid(t *testing.T) {
	resp, err := BindSQLResponse(`{"generated_sql": "SELECT * FROM users;"}`)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users;", resp.GeneratedSQL)
}

func TestBindSQLResponseTrimsWhitespace(t *testing.T) {
	resp, err := BindSQLResponse("\n  {\"generated_sql\": \"SELECT 1;\"}  \n")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", resp.GeneratedSQL)
}

func TestBindSQLResponseStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"generated_sql\": \"SELECT * FROM orders;\"}\n```"
	resp, err := BindSQLResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM orders;", resp.GeneratedSQL)

	raw = "```\n{\"generated_sql\": \"SELECT 1;\"}\n```"
	resp, err = BindSQLResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", resp.GeneratedSQL)
}

func TestBindSQLResponseEmptyOutput(t *testing.T) {
	_, err := BindSQLResponse("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	_, err = BindSQLResponse("   \n  ")
	assert.Error(t, err)
}

func TestBindSQLResponseNotJSON(t *testing.T) {
	_, err := BindSQLResponse("SELECT * FROM users;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestBindSQLResponseMissingField(t *testing.T) {
	_, err := BindSQLResponse(`{"sql": "SELECT 1;"}`)
	require.Error(t, err)
	assert.True(t, qferrors.IsType(err, qferrors.TypeSchemaMismatch))
}

func TestBindSQLResponseEmptyField(t *testing.T) {
	_, err := BindSQLResponse(`{"generated_sql": "  "}`)
	require.Error(t, err)
	assert.True(t, qferrors.IsType(err, qferrors.TypeSchemaMismatch))
}
