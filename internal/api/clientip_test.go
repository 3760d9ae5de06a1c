package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded-for", map[string]string{"X-Forwarded-For": "198.51.100.4"}, "198.51.100.4"},
		{"forwarded chain takes first", map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.1"}, "198.51.100.4"},
		{"cloudflare fallback", map[string]string{"CF-Connecting-IP": "203.0.113.9"}, "203.0.113.9"},
		{"forwarded-for wins over cloudflare", map[string]string{
			"X-Forwarded-For":  "198.51.100.4",
			"CF-Connecting-IP": "203.0.113.9",
		}, "198.51.100.4"},
		{"no headers", nil, UnknownClient},
		{"blank forwarded-for falls through", map[string]string{
			"X-Forwarded-For":  "  ",
			"CF-Connecting-IP": "203.0.113.9",
		}, "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
