package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWithAuth(keys []string, path, header string) *httptest.ResponseRecorder {
	handler := BearerAuthMiddleware(keys)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestBearerAuth(t *testing.T) {
	keys := []string{"alpha", "beta"}
	tests := []struct {
		name    string
		keys    []string
		path    string
		header  string
		want    int
		message string
	}{
		{name: "disabled without keys", path: "/namespaces", want: http.StatusOK},
		{name: "blank keys disable auth", keys: []string{"", "  "}, path: "/namespaces", want: http.StatusOK},
		{name: "missing header", keys: keys, path: "/namespaces", want: http.StatusUnauthorized,
			message: "missing authorization header"},
		{name: "basic scheme", keys: keys, path: "/namespaces", header: "Basic YWxwaGE=",
			want: http.StatusUnauthorized, message: "authorization header must use Bearer scheme"},
		{name: "scheme without token", keys: keys, path: "/namespaces", header: "Bearer",
			want: http.StatusUnauthorized, message: "authorization header must use Bearer scheme"},
		{name: "blank token", keys: keys, path: "/namespaces", header: "Bearer   ",
			want: http.StatusUnauthorized, message: "empty bearer token"},
		{name: "unknown token", keys: keys, path: "/namespaces", header: "Bearer gamma",
			want: http.StatusUnauthorized, message: "invalid api key"},
		{name: "prefix of a key", keys: keys, path: "/namespaces", header: "Bearer alph",
			want: http.StatusUnauthorized, message: "invalid api key"},
		{name: "first key", keys: keys, path: "/namespaces", header: "Bearer alpha", want: http.StatusOK},
		{name: "second key", keys: keys, path: "/search", header: "Bearer beta", want: http.StatusOK},
		{name: "scheme is case-insensitive", keys: keys, path: "/namespaces", header: "bearer alpha",
			want: http.StatusOK},
		{name: "health is public", keys: keys, path: "/health", want: http.StatusOK},
		{name: "metrics is public", keys: keys, path: "/metrics", want: http.StatusOK},
		{name: "public match is exact", keys: keys, path: "/health/extra", want: http.StatusUnauthorized,
			message: "missing authorization header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveWithAuth(tt.keys, tt.path, tt.header)
			assert.Equal(t, tt.want, rr.Code)
			if tt.want != http.StatusUnauthorized {
				return
			}
			assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Bearer")

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, ErrorResponseCodeUnauthorized, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestBearerAuth_TrimsConfiguredKeys(t *testing.T) {
	mw := BearerAuthMiddleware([]string{" padded "})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/namespaces", http.NoBody)
	req.Header.Set("Authorization", "Bearer padded")
	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code, "configured keys are trimmed")
}
