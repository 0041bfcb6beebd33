package face

import (
	"context"
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/portaria/internal/audit"
	"github.com/saturnino-fabrica-de-software/portaria/internal/config"
	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider/facecloud"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider/rekognition"
)

// ProviderType defines supported face recognition provider types
type ProviderType string

const (
	// ProviderTypeFaceCloud is the hosted HTTP face recognition API (default)
	ProviderTypeFaceCloud ProviderType = "facecloud"
	// ProviderTypeRekognition is the AWS Rekognition provider
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock recognizes enrolled images by hash, for dev/test
	ProviderTypeMock ProviderType = "mock"
)

// Recognizer is what the factory hands out: every backend can both
// search and enroll.
type Recognizer interface {
	provider.Recognizer
	provider.Enroller
}

// NewRecognizer creates the recognizer selected by RECOGNIZER.
// directory supplies names for backends that only return ids; it may be nil.
//
// Environment variables:
//   - RECOGNIZER: "facecloud", "rekognition" or "mock" (default: "facecloud")
//   - FACECLOUD_URL, FACECLOUD_API_KEY, FACECLOUD_COLLECTION
//   - AWS_REGION, REKOGNITION_COLLECTION (credentials via the AWS SDK chain)
//   - MOCK_PERSON_ID, MOCK_PERSON_NAME
func NewRecognizer(ctx context.Context, cfg *config.Config, directory provider.Directory, auditLogger audit.Logger) (Recognizer, error) {
	switch ProviderType(cfg.Recognizer) {
	case ProviderTypeFaceCloud, "":
		return createFaceCloudProvider(cfg, auditLogger)

	case ProviderTypeRekognition:
		return createRekognitionProvider(ctx, cfg, directory, auditLogger)

	case ProviderTypeMock:
		return mock.New().WithDefaultPerson(cfg.MockPersonID, cfg.MockPersonName), nil

	default:
		return nil, domain.ErrInvalidConfig.WithError(fmt.Errorf("unknown recognizer: %s (supported: %s, %s, %s)",
			cfg.Recognizer, ProviderTypeFaceCloud, ProviderTypeRekognition, ProviderTypeMock))
	}
}

func createFaceCloudProvider(cfg *config.Config, auditLogger audit.Logger) (Recognizer, error) {
	if cfg.FaceCloudAPIKey == "" {
		return nil, domain.ErrInvalidConfig.WithError(errors.New("FACECLOUD_API_KEY is required for the facecloud recognizer"))
	}

	fcConfig := facecloud.DefaultConfig()
	if cfg.FaceCloudURL != "" {
		fcConfig.BaseURL = cfg.FaceCloudURL
	}
	if cfg.RecognitionTimeout > 0 {
		fcConfig.Timeout = cfg.RecognitionTimeout
	}
	fcConfig.APIKey = cfg.FaceCloudAPIKey
	fcConfig.CollectionID = cfg.FaceCloudCollection

	var opts []facecloud.ProviderOption
	if auditLogger != nil {
		opts = append(opts, facecloud.WithAuditLogger(auditLogger))
	}

	return facecloud.NewProvider(fcConfig, opts...), nil
}

func createRekognitionProvider(ctx context.Context, cfg *config.Config, directory provider.Directory, auditLogger audit.Logger) (Recognizer, error) {
	rekogConfig := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rekogConfig.Region = cfg.AWSRegion
	}
	if cfg.RekognitionCollection != "" {
		rekogConfig.CollectionID = cfg.RekognitionCollection
	}

	var opts []rekognition.ProviderOption
	if directory != nil {
		opts = append(opts, rekognition.WithDirectory(directory))
	}
	if auditLogger != nil {
		opts = append(opts, rekognition.WithAuditLogger(auditLogger))
	}

	prov, err := rekognition.NewProvider(ctx, rekogConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("create rekognition provider for collection %s: %w", rekogConfig.CollectionID, err)
	}

	return prov, nil
}
