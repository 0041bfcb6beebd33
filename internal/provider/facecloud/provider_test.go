package facecloud

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/portaria/internal/audit"
	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider"
)

func testImage() []byte {
	return bytes.Repeat([]byte{0xAB}, 2048)
}

func TestProvider_Search(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      interface{}
		opts      provider.SearchOptions
		want      []domain.Match
		wantErrIs error
	}{
		{
			name:   "maps person and score",
			status: http.StatusOK,
			body: []SearchResult{
				{Person: PersonResponse{ID: "p-1", Name: "aman"}, Score: 0.93},
				{Person: PersonResponse{ID: "p-2", Name: ""}, Score: 0.71},
			},
			opts: provider.DefaultSearchOptions(),
			want: []domain.Match{
				{PersonID: "p-1", PersonName: "aman", Score: 0.93},
				{PersonID: "p-2", PersonName: "", Score: 0.71},
			},
		},
		{
			name:   "drops results under the floor",
			status: http.StatusOK,
			body:   []SearchResult{{Person: PersonResponse{ID: "p-1"}, Score: 0.4}},
			opts:   provider.DefaultSearchOptions(),
			want:   []domain.Match{},
		},
		{
			name:   "caps result count",
			status: http.StatusOK,
			body: []SearchResult{
				{Person: PersonResponse{ID: "p-1"}, Score: 0.9},
				{Person: PersonResponse{ID: "p-2"}, Score: 0.8},
			},
			opts: provider.SearchOptions{MinScore: 0.6, MaxResults: 1},
			want: []domain.Match{{PersonID: "p-1", Score: 0.9}},
		},
		{
			name:      "unprocessable image is no face",
			status:    http.StatusUnprocessableEntity,
			body:      map[string]string{"detail": "no face found"},
			opts:      provider.DefaultSearchOptions(),
			wantErrIs: provider.ErrNoFaceDetected,
		},
		{
			name:      "server failure is unavailable",
			status:    http.StatusInternalServerError,
			body:      map[string]string{"detail": "boom"},
			opts:      provider.DefaultSearchOptions(),
			wantErrIs: domain.ErrRecognitionUnavailable,
		},
		{
			name:      "bad key is unavailable",
			status:    http.StatusForbidden,
			body:      map[string]string{"detail": "forbidden"},
			opts:      provider.DefaultSearchOptions(),
			wantErrIs: ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			p := NewProvider(testConfig(server.URL))
			got, err := p.Search(context.Background(), testImage(), tt.opts)

			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvider_Search_Request(t *testing.T) {
	var got SearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode([]SearchResult{})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.CollectionID = "office"
	p := NewProvider(cfg)

	_, err := p.Search(context.Background(), testImage(), provider.SearchOptions{MinScore: 0.7, Mode: provider.SearchAccurate})
	require.NoError(t, err)

	assert.Equal(t, "ACCURATE", got.SearchMode)
	assert.Equal(t, 0.7, got.MinScore)
	require.NotNil(t, got.CollectionID)
	assert.Equal(t, "office", *got.CollectionID)
	require.Len(t, got.Images, 1)
}

func TestProvider_Search_InvalidImage(t *testing.T) {
	p := NewProvider(testConfig("http://127.0.0.1:0"))

	_, err := p.Search(context.Background(), []byte("x"), provider.DefaultSearchOptions())
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestProvider_Enroll(t *testing.T) {
	auditLog := audit.NewMemoryLogger()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req PersonRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "emp-1", req.ID)
		assert.Equal(t, []string{"office"}, req.Collections)
		_ = json.NewEncoder(w).Encode(PersonResponse{ID: req.ID, Name: req.Name})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.CollectionID = "office"
	p := NewProvider(cfg, WithAuditLogger(auditLog))

	n, err := p.Enroll(context.Background(), provider.Person{ID: "emp-1", Name: "Aman", Images: [][]byte{testImage(), testImage()}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	events := auditLog.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventFaceEnrolled, events[0].EventType)
	assert.Equal(t, "emp-1", events[0].PersonID)
	assert.True(t, events[0].Success)
}

func TestProvider_Enroll_RejectsEmptyPerson(t *testing.T) {
	p := NewProvider(testConfig("http://127.0.0.1:0"))

	_, err := p.Enroll(context.Background(), provider.Person{ID: "emp-1"})
	assert.ErrorIs(t, err, provider.ErrInvalidPerson)
}
