package guard

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	qferrors "github.com/queryforge/queryforge/pkg/errors"
)

// SQLResponse is the validated, structured generation output.
type SQLResponse struct {
	// GeneratedSQL is the SQL statement produced for the query.
	GeneratedSQL string `json:"generated_sql"`
}

// BindSQLResponse parses a raw completion into a SQLResponse, enforcing the
// schema once at the boundary. Models sometimes wrap the JSON object in a
// fenced code block; that wrapping is tolerated. A missing or empty
// generated_sql field fails with a schema mismatch error.
func BindSQLResponse(raw string) (*SQLResponse, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return nil, fmt.Errorf("output is empty")
	}

	var resp SQLResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w", err)
	}

	if strings.TrimSpace(resp.GeneratedSQL) == "" {
		return nil, qferrors.NewSchemaMismatchError("generated_sql")
	}

	return &resp, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence, if present.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		// Drop the language tag line (e.g. "json").
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
