package main

import (
	"net/http/httptest"
	"testing"

	"notesboard/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestOriginChecker(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	check := originChecker(cfg)

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:5173", true},
		{"http://example.com", true},
		{"https://example.com", true},
		{"http://evil.example", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "http://example.com/api/notes/live", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, check(r), tt.origin)
	}

	cfg.AllowAllOrigins = true
	r := httptest.NewRequest("GET", "http://example.com/api/notes/live", nil)
	r.Header.Set("Origin", "http://evil.example")
	assert.True(t, originChecker(cfg)(r))
}
