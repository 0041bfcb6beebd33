package provider

import (
	"context"
	"errors"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

// SearchMode trades recognition latency for accuracy.
type SearchMode string

const (
	SearchFast     SearchMode = "fast"
	SearchAccurate SearchMode = "accurate"
)

// ParseSearchMode returns SearchFast for anything it does not recognise.
func ParseSearchMode(s string) SearchMode {
	if SearchMode(s) == SearchAccurate {
		return SearchAccurate
	}
	return SearchFast
}

// SearchOptions são os parâmetros de uma busca 1:N
type SearchOptions struct {
	MinScore   float64    // 0.0 - 1.0
	Mode       SearchMode
	MaxResults int
}

// DefaultSearchOptions mirrors the recognizer defaults the poller uses.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MinScore:   0.6,
		Mode:       SearchFast,
		MaxResults: 5,
	}
}

// Recognizer define a interface para provedores de reconhecimento facial
type Recognizer interface {
	// Name identifica o provedor em logs e auditoria
	Name() string

	// Search returns the enrolled identities found in image, best first.
	// An image without a face yields ErrNoFaceDetected; transport and
	// service failures wrap domain.ErrRecognitionUnavailable.
	Search(ctx context.Context, image []byte, opts SearchOptions) ([]domain.Match, error)
}

// Person is an identity to register with a recognizer.
type Person struct {
	ID     string   `yaml:"id" json:"id"`
	Name   string   `yaml:"name" json:"name"`
	Images [][]byte `yaml:"-" json:"-"`
}

// Enroller registers people with a recognizer.
type Enroller interface {
	// Enroll uploads every image of p and returns how many were indexed.
	Enroll(ctx context.Context, p Person) (int, error)
}

// Gallery is implemented by recognizers that own their face collection.
type Gallery interface {
	// FaceCount is the number of faces currently indexed.
	FaceCount(ctx context.Context) (int, error)
	// Reset drops every indexed face, leaving an empty collection.
	Reset(ctx context.Context) error
}

// Directory resolves display names for recognizers that only return ids.
type Directory interface {
	Lookup(personID string) (name string, ok bool)
}

var (
	ErrNoFaceDetected = errors.New("no face detected in image")
	ErrInvalidPerson  = errors.New("invalid person")
)

// ValidateImage checks the size bounds every backend enforces.
func ValidateImage(image []byte) error {
	const (
		minImageSize = 100
		maxImageSize = 5 * 1024 * 1024
	)

	if len(image) < minImageSize {
		return domain.ErrInvalidImage.WithError(errors.New("image too small"))
	}
	if len(image) > maxImageSize {
		return domain.ErrInvalidImage.WithError(errors.New("image exceeds 5MB"))
	}
	return nil
}
