package redis

import (
	"strings"
	"testing"
)

func TestNew_RejectsMissingEndpoint(t *testing.T) {
	if _, err := New("", "", ""); err == nil {
		t.Fatal("expected error for empty endpoint configuration")
	}
}

func TestNew_RejectsMalformedURL(t *testing.T) {
	_, err := New("://not-a-url", "", "")
	if err == nil {
		t.Fatal("expected error for malformed url")
	}
	if !strings.Contains(err.Error(), "invalid url") {
		t.Errorf("err = %v, want invalid url", err)
	}
}
