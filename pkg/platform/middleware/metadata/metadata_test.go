package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"domainfactor/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name:       "first forwarded address wins",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"},
			remoteAddr: "10.0.0.1:1234",
			expected:   "203.0.113.9",
		},
		{
			name:       "real ip header",
			headers:    map[string]string{"X-Real-IP": " 198.51.100.4 "},
			remoteAddr: "10.0.0.1:1234",
			expected:   "198.51.100.4",
		},
		{
			name:       "ipv4 remote addr",
			remoteAddr: "127.0.0.1:5555",
			expected:   "127.0.0.1",
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[::1]:5555",
			expected:   "::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, ClientIPFromRequest(r))
		})
	}
}

func TestClientMetadata(t *testing.T) {
	t.Run("propagates caller request id", func(t *testing.T) {
		var gotID, gotIP string
		h := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			gotID = requestcontext.RequestID(r.Context())
			gotIP = requestcontext.ClientIP(r.Context())
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "192.0.2.1:4000"
		r.Header.Set(RequestIDHeader, "req-abc")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, "req-abc", gotID)
		assert.Equal(t, "192.0.2.1", gotIP)
		assert.Equal(t, "req-abc", w.Header().Get(RequestIDHeader))
	})

	t.Run("generates request id when absent", func(t *testing.T) {
		var gotID string
		h := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			gotID = requestcontext.RequestID(r.Context())
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, gotID)
		assert.Equal(t, gotID, w.Header().Get(RequestIDHeader))
	})
}
