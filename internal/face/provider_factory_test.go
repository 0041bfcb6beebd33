package face

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/portaria/internal/audit"
	"github.com/saturnino-fabrica-de-software/portaria/internal/config"
	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider/facecloud"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider/mock"
)

func TestNewRecognizer(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		cfg        *config.Config
		wantErrIs  error
		assertType func(t *testing.T, r Recognizer)
	}{
		{
			name: "facecloud with key",
			cfg: &config.Config{
				Recognizer:         "facecloud",
				FaceCloudURL:       "http://localhost:8080",
				FaceCloudAPIKey:    "key",
				RecognitionTimeout: 3 * time.Second,
			},
			assertType: func(t *testing.T, r Recognizer) {
				_, ok := r.(*facecloud.Provider)
				assert.True(t, ok, "got %T", r)
				_, ok = r.(provider.Gallery)
				assert.False(t, ok)
			},
		},
		{
			name: "empty recognizer defaults to facecloud",
			cfg:  &config.Config{FaceCloudAPIKey: "key"},
			assertType: func(t *testing.T, r Recognizer) {
				assert.Equal(t, "facecloud", r.Name())
			},
		},
		{
			name:      "facecloud without key",
			cfg:       &config.Config{Recognizer: "facecloud"},
			wantErrIs: domain.ErrInvalidConfig,
		},
		{
			name: "mock",
			cfg:  &config.Config{Recognizer: "mock", MockPersonID: "demo", MockPersonName: "Demo"},
			assertType: func(t *testing.T, r Recognizer) {
				_, ok := r.(*mock.Provider)
				assert.True(t, ok, "got %T", r)
				_, ok = r.(provider.Gallery)
				assert.True(t, ok, "mock supports enroll --reset")
			},
		},
		{
			name:      "unknown recognizer",
			cfg:       &config.Config{Recognizer: "opencv"},
			wantErrIs: domain.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRecognizer(ctx, tt.cfg, nil, audit.NewMemoryLogger())
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			tt.assertType(t, r)
		})
	}
}
