package client

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequest_CacheKey(t *testing.T) {
	tests := []struct {
		name     string
		req      *Request
		expected string
	}{
		{
			name:     "plain path",
			req:      NewRequest(http.MethodGet, "/expenses"),
			expected: "acc|/expenses",
		},
		{
			name:     "trailing slash",
			req:      NewRequest(http.MethodGet, "/expenses/"),
			expected: "acc|/expenses",
		},
		{
			name:     "query in path",
			req:      NewRequest(http.MethodGet, "/expenses?month=2025-03"),
			expected: "acc|/expenses?month=2025-03",
		},
		{
			name:     "query values",
			req:      NewRequest(http.MethodGet, "/expenses").WithQuery(url.Values{"month": {"2025-03"}}),
			expected: "acc|/expenses?month=2025-03",
		},
		{
			name: "both merged",
			req: NewRequest(http.MethodGet, "/expenses?month=2025-03").
				WithQuery(url.Values{"category": {"food"}}),
			expected: "acc|/expenses?category=food&month=2025-03",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.req.cacheKey("acc"))
		})
	}

	march := NewRequest(http.MethodGet, "/expenses?month=2025-03").cacheKey("acc")
	april := NewRequest(http.MethodGet, "/expenses?month=2025-04").cacheKey("acc")
	assert.NotEqual(t, march, april)
}
