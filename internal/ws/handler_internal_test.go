package ws

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeCheckOrigin(t *testing.T) {
	check := makeCheckOrigin([]string{"http://localhost:3000", "HTTPS://App.Example.Com"})

	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:3000", true},
		{"HTTP://LOCALHOST:3000", true},
		{"https://app.example.com", true},
		{"http://evil.example.com", false},
		{"", false},
		{"not a url", false},
	}
	for _, tc := range tests {
		r, _ := http.NewRequest(http.MethodGet, "/ws", nil)
		if tc.origin != "" {
			r.Header.Set("Origin", tc.origin)
		}
		assert.Equal(t, tc.want, check(r), "origin %q", tc.origin)
	}
}

func TestMakeCheckOriginEmptyAllowList(t *testing.T) {
	check := makeCheckOrigin(nil)
	r, _ := http.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	assert.False(t, check(r))
}

func TestExtractToken(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/ws", nil)
	assert.Empty(t, extractToken(r))

	r.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", extractToken(r))

	r.Header.Del("Authorization")
	r.Header.Set("Sec-WebSocket-Protocol", "bearer, xyz789")
	assert.Equal(t, "xyz789", extractToken(r))
}
