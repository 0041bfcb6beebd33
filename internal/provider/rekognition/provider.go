package rekognition

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/portaria/internal/audit"
	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider"
)

const providerName = "rekognition"

// maxSearchFaces is the SearchFacesByImage upper bound.
const maxSearchFaces = 4096

var externalIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.\-:]{1,255}$`)

// Provider implements provider.Recognizer and provider.Enroller on a single
// Rekognition collection. Faces are indexed with ExternalImageId set to the
// person id, so search results map straight back to people.
type Provider struct {
	client      *Client
	directory   provider.Directory
	auditLogger audit.Logger
}

// ProviderOption defines optional configuration for Provider
type ProviderOption func(*Provider)

// WithAuditLogger sets the audit logger for the provider
func WithAuditLogger(logger audit.Logger) ProviderOption {
	return func(p *Provider) {
		p.auditLogger = logger
	}
}

// WithDirectory resolves names for matched ids. Rekognition only stores ids.
func WithDirectory(d provider.Directory) ProviderOption {
	return func(p *Provider) {
		p.directory = d
	}
}

var (
	_ provider.Recognizer = (*Provider)(nil)
	_ provider.Enroller   = (*Provider)(nil)
	_ provider.Gallery    = (*Provider)(nil)
)

// NewProvider connects to Rekognition and makes sure the collection exists.
func NewProvider(ctx context.Context, cfg Config, opts ...ProviderOption) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}

	if err := client.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("ensure collection %s: %w", cfg.CollectionID, err)
	}

	return NewProviderWithClient(client, opts...), nil
}

// NewProviderWithClient builds a provider over an existing client without
// touching the collection.
func NewProviderWithClient(client *Client, opts ...ProviderOption) *Provider {
	p := &Provider{client: client}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return providerName }

// Client exposes collection management for the CLI.
func (p *Provider) Client() *Client { return p.client }

// logAudit logs an audit event if an audit logger is configured
// Audit failure does not affect the operation (fire-and-forget)
func (p *Provider) logAudit(ctx context.Context, eventType audit.EventType, personID string, success bool, err error, metadata map[string]string) {
	if p.auditLogger == nil {
		return
	}

	event := audit.Event{
		EventType: eventType,
		PersonID:  personID,
		Provider:  providerName,
		Success:   success,
		Metadata:  metadata,
	}

	if err != nil {
		event.Error = err.Error()
	}

	_ = p.auditLogger.Log(ctx, event)
}

// Search runs SearchFacesByImage against the collection. The largest face
// in the image is searched; matches for the same person are collapsed.
func (p *Provider) Search(ctx context.Context, image []byte, opts provider.SearchOptions) ([]domain.Match, error) {
	metadata := map[string]string{
		"image_size": strconv.Itoa(len(image)),
		"threshold":  fmt.Sprintf("%.4f", opts.MinScore),
		"mode":       string(opts.Mode),
	}

	if err := provider.ValidateImage(image); err != nil {
		p.logAudit(ctx, audit.EventFaceSearched, "", false, err, metadata)
		return nil, err
	}

	maxFaces := opts.MaxResults
	if maxFaces <= 0 {
		maxFaces = provider.DefaultSearchOptions().MaxResults
	}
	if maxFaces > maxSearchFaces {
		maxFaces = maxSearchFaces
	}

	input := &rekognition.SearchFacesByImageInput{
		CollectionId: aws.String(p.client.config.CollectionID),
		Image: &types.Image{
			Bytes: image,
		},
		MaxFaces:           aws.Int32(int32(maxFaces)),
		FaceMatchThreshold: aws.Float32(float32(opts.MinScore * 100)), // 0-1 to 0-100
		QualityFilter:      qualityFilter(opts.Mode),
	}

	output, err := p.client.rekognition.SearchFacesByImage(ctx, input)
	if err != nil {
		if parsed := ParseNoFaceError(err); errors.Is(parsed, ErrNoFaceDetected) {
			p.logAudit(ctx, audit.EventFaceSearched, "", false, parsed, metadata)
			return nil, parsed
		}

		wrapped := p.client.collectionError("search", err)
		p.logAudit(ctx, audit.EventFaceSearched, "", false, wrapped, metadata)
		return nil, domain.ErrRecognitionUnavailable.WithError(wrapped)
	}

	matches := make([]domain.Match, 0, len(output.FaceMatches))
	seen := make(map[string]bool, len(output.FaceMatches))
	for _, fm := range output.FaceMatches {
		if fm.Face == nil {
			continue
		}
		personID := aws.ToString(fm.Face.ExternalImageId)
		if personID == "" || seen[personID] {
			continue
		}
		seen[personID] = true

		m := domain.Match{
			PersonID: personID,
			Score:    float64(aws.ToFloat32(fm.Similarity)) / 100,
		}
		if p.directory != nil {
			if name, ok := p.directory.Lookup(personID); ok {
				m.PersonName = name
			}
		}
		matches = append(matches, m)
	}

	metadata["matches"] = strconv.Itoa(len(matches))
	p.logAudit(ctx, audit.EventFaceSearched, "", true, nil, metadata)

	return matches, nil
}

// Enroll indexes each image of the person with ExternalImageId set to the
// person id. Images without a usable face are skipped; an error is returned
// only when none could be indexed.
func (p *Provider) Enroll(ctx context.Context, person provider.Person) (int, error) {
	if !externalIDPattern.MatchString(person.ID) {
		return 0, fmt.Errorf("%w: %q: %w", provider.ErrInvalidPerson, person.ID, ErrInvalidExternalID)
	}
	if len(person.Images) == 0 {
		return 0, fmt.Errorf("%w: %s has no images", provider.ErrInvalidPerson, person.ID)
	}

	indexed := 0
	var lastErr error
	for i, image := range person.Images {
		if err := p.indexFace(ctx, person.ID, image); err != nil {
			lastErr = fmt.Errorf("image %d: %w", i, err)
			if errors.Is(err, ErrCollectionNotFound) || errors.Is(err, ErrInvalidCredentials) {
				return indexed, lastErr
			}
			continue
		}
		indexed++
	}

	if indexed == 0 {
		return 0, fmt.Errorf("enroll %s: %w", person.ID, lastErr)
	}
	return indexed, nil
}

// FaceCount reports the faces indexed in the collection.
func (p *Provider) FaceCount(ctx context.Context) (int, error) {
	n, err := p.client.FaceCount(ctx)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Reset deletes the collection and creates it again empty.
func (p *Provider) Reset(ctx context.Context) error {
	if err := p.client.DeleteCollection(ctx); err != nil && !errors.Is(err, ErrCollectionNotFound) {
		return err
	}
	if err := p.client.CreateCollection(ctx); err != nil {
		return err
	}

	p.logAudit(ctx, audit.EventCollectionReset, "", true, nil, map[string]string{
		"collection": p.client.config.CollectionID,
	})
	return nil
}

func (p *Provider) indexFace(ctx context.Context, personID string, image []byte) error {
	metadata := map[string]string{
		"image_size": strconv.Itoa(len(image)),
	}

	if err := provider.ValidateImage(image); err != nil {
		p.logAudit(ctx, audit.EventFaceEnrolled, personID, false, err, metadata)
		return err
	}

	input := &rekognition.IndexFacesInput{
		CollectionId:    aws.String(p.client.config.CollectionID),
		ExternalImageId: aws.String(personID),
		Image: &types.Image{
			Bytes: image,
		},
		MaxFaces:      aws.Int32(1),
		QualityFilter: types.QualityFilterAuto,
		DetectionAttributes: []types.Attribute{
			types.AttributeDefault,
		},
	}

	output, err := p.client.rekognition.IndexFaces(ctx, input)
	if err != nil {
		if parsed := ParseNoFaceError(err); errors.Is(parsed, ErrNoFaceDetected) {
			err = parsed
		} else {
			err = p.client.collectionError("index into", err)
		}
		p.logAudit(ctx, audit.EventFaceEnrolled, personID, false, err, metadata)
		return err
	}

	if len(output.FaceRecords) == 0 {
		indexErr := ParseIndexFacesError(output.UnindexedFaces)
		if indexErr == nil {
			indexErr = ErrNoFaceDetected
		}
		metadata["reason"] = "unindexed_faces"
		p.logAudit(ctx, audit.EventFaceEnrolled, personID, false, indexErr, metadata)
		return indexErr
	}

	if face := output.FaceRecords[0].Face; face != nil {
		metadata["face_id"] = aws.ToString(face.FaceId)
	}
	p.logAudit(ctx, audit.EventFaceEnrolled, personID, true, nil, metadata)

	return nil
}

// qualityFilter maps the search mode onto Rekognition's input filter:
// accurate mode discards low quality faces before matching.
func qualityFilter(mode provider.SearchMode) types.QualityFilter {
	if mode == provider.SearchAccurate {
		return types.QualityFilterHigh
	}
	return types.QualityFilterAuto
}
