package rekognition

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
)

const (
	errCodeAccessDenied     = "AccessDeniedException"
	errCodeResourceNotFound = "ResourceNotFoundException"
	errCodeResourceExists   = "ResourceAlreadyExistsException"
	errCodeInvalidParameter = "InvalidParameterException"
)

// RekognitionAPI is the subset of the AWS client the recognizer calls.
type RekognitionAPI interface {
	SearchFacesByImage(ctx context.Context, params *rekognition.SearchFacesByImageInput, optFns ...func(*rekognition.Options)) (*rekognition.SearchFacesByImageOutput, error)
	IndexFaces(ctx context.Context, params *rekognition.IndexFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.IndexFacesOutput, error)
	CreateCollection(ctx context.Context, params *rekognition.CreateCollectionInput, optFns ...func(*rekognition.Options)) (*rekognition.CreateCollectionOutput, error)
	DeleteCollection(ctx context.Context, params *rekognition.DeleteCollectionInput, optFns ...func(*rekognition.Options)) (*rekognition.DeleteCollectionOutput, error)
	DescribeCollection(ctx context.Context, params *rekognition.DescribeCollectionInput, optFns ...func(*rekognition.Options)) (*rekognition.DescribeCollectionOutput, error)
}

var _ RekognitionAPI = (*rekognition.Client)(nil)

// Client wraps the AWS Rekognition client and provides collection management operations
type Client struct {
	rekognition RekognitionAPI
	config      Config
}

// NewClient creates a new Rekognition client with the provided configuration
// It uses the AWS default credential chain to authenticate
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewClientWithAPI(rekognition.NewFromConfig(awsCfg), cfg), nil
}

// NewClientWithAPI wraps an existing API implementation.
func NewClientWithAPI(api RekognitionAPI, cfg Config) *Client {
	return &Client{
		rekognition: api,
		config:      cfg,
	}
}

// CreateCollection creates the configured collection.
// Returns ErrCollectionAlreadyExists if a collection with the same name already exists
func (c *Client) CreateCollection(ctx context.Context) error {
	_, err := c.rekognition.CreateCollection(ctx, &rekognition.CreateCollectionInput{
		CollectionId: aws.String(c.config.CollectionID),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case errCodeResourceExists:
				return fmt.Errorf("collection %s: %w", c.config.CollectionID, ErrCollectionAlreadyExists)
			case errCodeInvalidParameter:
				return fmt.Errorf("collection %s: invalid collection parameters: %w", c.config.CollectionID, err)
			case errCodeAccessDenied:
				return fmt.Errorf("collection %s: %w", c.config.CollectionID, ErrInvalidCredentials)
			}
		}
		return fmt.Errorf("failed to create collection %s: %w", c.config.CollectionID, err)
	}

	return nil
}

// DeleteCollection deletes the configured collection and every face in it.
func (c *Client) DeleteCollection(ctx context.Context) error {
	_, err := c.rekognition.DeleteCollection(ctx, &rekognition.DeleteCollectionInput{
		CollectionId: aws.String(c.config.CollectionID),
	})
	if err != nil {
		return c.collectionError("delete", err)
	}

	return nil
}

// CollectionExists checks if the configured collection exists
func (c *Client) CollectionExists(ctx context.Context) (bool, error) {
	_, err := c.rekognition.DescribeCollection(ctx, &rekognition.DescribeCollectionInput{
		CollectionId: aws.String(c.config.CollectionID),
	})
	if err != nil {
		if errors.Is(c.collectionError("describe", err), ErrCollectionNotFound) {
			return false, nil
		}
		return false, c.collectionError("describe", err)
	}

	return true, nil
}

// FaceCount returns the number of faces indexed in the collection
func (c *Client) FaceCount(ctx context.Context) (int64, error) {
	output, err := c.rekognition.DescribeCollection(ctx, &rekognition.DescribeCollectionInput{
		CollectionId: aws.String(c.config.CollectionID),
	})
	if err != nil {
		return 0, c.collectionError("describe", err)
	}

	return aws.ToInt64(output.FaceCount), nil
}

// EnsureCollection creates a collection if it doesn't exist, or does nothing if it already exists
func (c *Client) EnsureCollection(ctx context.Context) error {
	exists, err := c.CollectionExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if exists {
		return nil
	}

	if err := c.CreateCollection(ctx); err != nil {
		// created concurrently
		if errors.Is(err, ErrCollectionAlreadyExists) {
			return nil
		}
		return err
	}

	return nil
}

func (c *Client) collectionError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeResourceNotFound:
			return fmt.Errorf("collection %s: %w", c.config.CollectionID, ErrCollectionNotFound)
		case errCodeAccessDenied:
			return fmt.Errorf("collection %s: %w", c.config.CollectionID, ErrInvalidCredentials)
		}
	}
	return fmt.Errorf("failed to %s collection %s: %w", op, c.config.CollectionID, err)
}

// ParseNoFaceError checks if an AWS error indicates no face was detected
func ParseNoFaceError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == errCodeInvalidParameter {
		if msg := apiErr.ErrorMessage(); msg != "" {
			return fmt.Errorf("%w: %s", ErrNoFaceDetected, msg)
		}
		return ErrNoFaceDetected
	}

	return err
}

// ParseIndexFacesError interprets errors from IndexFaces operation
func ParseIndexFacesError(unindexedFaces []types.UnindexedFace) error {
	if len(unindexedFaces) == 0 {
		return nil
	}

	face := unindexedFaces[0]
	if len(face.Reasons) > 0 {
		switch face.Reasons[0] {
		case types.ReasonExceedsMaxFaces:
			return ErrMultipleFaces
		case types.ReasonExtremePose, types.ReasonLowBrightness,
			types.ReasonLowSharpness, types.ReasonLowConfidence,
			types.ReasonSmallBoundingBox, types.ReasonLowFaceQuality:
			return fmt.Errorf("%w: %s", ErrNoFaceDetected, face.Reasons[0])
		}
	}

	return ErrNoFaceDetected
}
