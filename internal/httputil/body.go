// Package httputil provides helpers for working with HTTP payloads safely.
package httputil

import (
	"errors"
	"io"
)

// DefaultMaxBodyBytes caps upstream API response bodies to 4MB. Completion
// and embedding responses are far smaller; anything beyond this is a broken
// or hostile upstream.
const DefaultMaxBodyBytes int64 = 4 * 1024 * 1024

var ErrBodyTooLarge = errors.New("response body too large")

// ReadLimitedBody reads up to maxBytes from reader and returns ErrBodyTooLarge
// when exceeded. The truncated prefix is returned alongside the error so it
// can still be logged.
func ReadLimitedBody(reader io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(reader)
	}

	limited := io.LimitReader(reader, maxBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return body, err
	}
	if int64(len(body)) > maxBytes {
		return body[:int(maxBytes)], ErrBodyTooLarge
	}
	return body, nil
}
