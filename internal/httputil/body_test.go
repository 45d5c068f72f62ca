package httputil

import (
	"errors"
	"strings"
	"testing"
)

func TestReadLimitedBodyAllowsWithinLimit(t *testing.T) {
	body, err := ReadLimitedBody(strings.NewReader("hello"), 10)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if string(body) != "hello" {
		t.Fatalf("unexpected body: %s", string(body))
	}
}

func TestReadLimitedBodyRejectsOversize(t *testing.T) {
	body, err := ReadLimitedBody(strings.NewReader("helloworld"), 5)
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
	if string(body) != "hello" {
		t.Fatalf("unexpected body: %s", string(body))
	}
}

func TestReadLimitedBodyUnlimited(t *testing.T) {
	body, err := ReadLimitedBody(strings.NewReader("anything goes"), 0)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if string(body) != "anything goes" {
		t.Fatalf("unexpected body: %s", string(body))
	}
}
