package facecloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) Config {
	return Config{
		BaseURL:    url,
		APIKey:     "test-key",
		Timeout:    5 * time.Second,
		RetryCount: 0,
	}
}

func TestClient_Search(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse interface{}
		serverStatus   int
		wantErr        bool
		wantErrIs      error
		wantLen        int
	}{
		{
			name: "single match",
			serverResponse: []SearchResult{
				{Person: PersonResponse{ID: "p-1", Name: "aman"}, Score: 0.91},
			},
			serverStatus: http.StatusOK,
			wantLen:      1,
		},
		{
			name:           "no match",
			serverResponse: []SearchResult{},
			serverStatus:   http.StatusOK,
			wantLen:        0,
		},
		{
			name:           "unauthorized",
			serverResponse: map[string]string{"detail": "invalid key"},
			serverStatus:   http.StatusUnauthorized,
			wantErr:        true,
			wantErrIs:      ErrUnauthorized,
		},
		{
			name:           "server error",
			serverResponse: map[string]string{"detail": "boom"},
			serverStatus:   http.StatusInternalServerError,
			wantErr:        true,
			wantErrIs:      ErrUnavailable,
		},
		{
			name:           "invalid json",
			serverResponse: "not a list",
			serverStatus:   http.StatusOK,
			wantErr:        true,
			wantErrIs:      ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/search", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))

				var req SearchRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Len(t, req.Images, 1)
				assert.Equal(t, "FAST", req.SearchMode)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.serverStatus)
				_ = json.NewEncoder(w).Encode(tt.serverResponse)
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL))
			got, err := client.Search(context.Background(), SearchRequest{Images: []string{"aGVsbG8="}, MinScore: 0.6, SearchMode: "FAST"})

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode([]SearchResult{{Person: PersonResponse{ID: "p-1"}, Score: 0.8}})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryCount = 1
	got, err := NewClient(cfg).Search(context.Background(), SearchRequest{Images: []string{"x"}})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"no face found"}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryCount = 3
	_, err := NewClient(cfg).Search(context.Background(), SearchRequest{Images: []string{"x"}})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryCount = 3

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := NewClient(cfg).Search(ctx, SearchRequest{Images: []string{"x"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_CreatePerson(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/persons", r.URL.Path)

		var req PersonRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "aman", req.Name)
		assert.Len(t, req.Images, 2)

		_ = json.NewEncoder(w).Encode(PersonResponse{ID: "generated-id", Name: req.Name})
	}))
	defer server.Close()

	resp, err := NewClient(testConfig(server.URL)).CreatePerson(context.Background(), PersonRequest{Name: "aman", Images: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "generated-id", resp.ID)
}

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateBackoff(tt.attempt), "attempt %d", tt.attempt)
	}
}
