package rekognition

import (
	"errors"

	"github.com/saturnino-fabrica-de-software/portaria/internal/provider"
)

var (
	// ErrCollectionNotFound indicates that the specified collection does not exist
	ErrCollectionNotFound = errors.New("rekognition collection not found")

	// ErrCollectionAlreadyExists indicates that a collection with the same name already exists
	ErrCollectionAlreadyExists = errors.New("rekognition collection already exists")

	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrNoFaceDetected is shared with the other recognizers so callers can
	// match it without importing this package.
	ErrNoFaceDetected = provider.ErrNoFaceDetected

	// ErrMultipleFaces indicates that multiple faces were detected when only one was expected
	ErrMultipleFaces = errors.New("multiple faces detected in image")

	// ErrInvalidExternalID means a person id cannot be stored as an ExternalImageId.
	ErrInvalidExternalID = errors.New("person id is not a valid rekognition external image id")
)
