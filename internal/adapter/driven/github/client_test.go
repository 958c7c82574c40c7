package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghAdapter "github.com/ericfisherdev/gitswitch/internal/adapter/driven/github"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *ghAdapter.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/", "test-token")
	require.NoError(t, err)

	return client
}

func TestAuthenticatedLogin(t *testing.T) {
	var gotAuth string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "4999")
		_ = json.NewEncoder(w).Encode(map[string]any{"login": "octocat", "id": 1})
	})

	client := newTestClient(t, mux)

	login, err := client.AuthenticatedLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", login)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestAuthenticatedLogin_Unauthorized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	client := newTestClient(t, mux)

	_, err := client.AuthenticatedLogin(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad credentials")
}

func TestAuthenticatedLogin_EmptyLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	client := newTestClient(t, mux)

	_, err := client.AuthenticatedLogin(context.Background())
	require.Error(t, err)
}

func TestFactory(t *testing.T) {
	assert.NotNil(t, ghAdapter.Factory()("ghp_x"))
}
