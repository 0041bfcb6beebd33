package facecloud

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/saturnino-fabrica-de-software/portaria/internal/audit"
	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider"
)

const providerName = "facecloud"

// Provider implements provider.Recognizer and provider.Enroller over the
// face cloud HTTP API.
type Provider struct {
	client      *Client
	collection  string
	auditLogger audit.Logger
}

type ProviderOption func(*Provider)

func WithAuditLogger(logger audit.Logger) ProviderOption {
	return func(p *Provider) {
		p.auditLogger = logger
	}
}

var (
	_ provider.Recognizer = (*Provider)(nil)
	_ provider.Enroller   = (*Provider)(nil)
)

// NewProvider creates a new face cloud provider
func NewProvider(config Config, opts ...ProviderOption) *Provider {
	p := &Provider{
		client:     NewClient(config),
		collection: config.CollectionID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) logAudit(ctx context.Context, eventType audit.EventType, personID string, err error, metadata map[string]string) {
	if p.auditLogger == nil {
		return
	}

	event := audit.Event{
		EventType: eventType,
		PersonID:  personID,
		Provider:  providerName,
		Success:   err == nil,
		Metadata:  metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}

	_ = p.auditLogger.Log(ctx, event)
}

// Search posts the frame to /search. Results come back best first.
func (p *Provider) Search(ctx context.Context, image []byte, opts provider.SearchOptions) ([]domain.Match, error) {
	metadata := map[string]string{
		"image_size": strconv.Itoa(len(image)),
		"threshold":  fmt.Sprintf("%.4f", opts.MinScore),
		"mode":       string(opts.Mode),
	}

	if err := provider.ValidateImage(image); err != nil {
		p.logAudit(ctx, audit.EventFaceSearched, "", err, metadata)
		return nil, err
	}

	req := SearchRequest{
		Images:     []string{base64.StdEncoding.EncodeToString(image)},
		MinScore:   opts.MinScore,
		SearchMode: searchMode(opts.Mode),
	}
	if p.collection != "" {
		req.CollectionID = &p.collection
	}

	results, err := p.client.Search(ctx, req)
	if err != nil {
		err = classify(err)
		p.logAudit(ctx, audit.EventFaceSearched, "", err, metadata)
		return nil, err
	}

	matches := make([]domain.Match, 0, len(results))
	for _, r := range results {
		if r.Score < opts.MinScore {
			continue
		}
		matches = append(matches, domain.Match{
			PersonID:   r.Person.ID,
			PersonName: r.Person.Name,
			Score:      r.Score,
		})
		if opts.MaxResults > 0 && len(matches) == opts.MaxResults {
			break
		}
	}

	metadata["matches"] = strconv.Itoa(len(matches))
	p.logAudit(ctx, audit.EventFaceSearched, "", nil, metadata)

	return matches, nil
}

// Enroll creates the person with all images in a single call.
func (p *Provider) Enroll(ctx context.Context, person provider.Person) (int, error) {
	if len(person.Images) == 0 {
		return 0, fmt.Errorf("%w: %s has no images", provider.ErrInvalidPerson, person.ID)
	}

	req := PersonRequest{
		ID:     person.ID,
		Name:   person.Name,
		Images: make([]string, 0, len(person.Images)),
	}
	for i, image := range person.Images {
		if err := provider.ValidateImage(image); err != nil {
			return 0, fmt.Errorf("image %d: %w", i, err)
		}
		req.Images = append(req.Images, base64.StdEncoding.EncodeToString(image))
	}
	if p.collection != "" {
		req.Collections = []string{p.collection}
	}

	metadata := map[string]string{"images": strconv.Itoa(len(req.Images))}

	created, err := p.client.CreatePerson(ctx, req)
	if err != nil {
		err = classify(err)
		p.logAudit(ctx, audit.EventFaceEnrolled, person.ID, err, metadata)
		return 0, fmt.Errorf("enroll %s: %w", person.ID, err)
	}

	personID := person.ID
	if created != nil && created.ID != "" {
		personID = created.ID
	}
	p.logAudit(ctx, audit.EventFaceEnrolled, personID, nil, metadata)

	return len(req.Images), nil
}

// classify maps client errors onto the recognizer contract: a rejected
// image means no face, everything else is the service being unavailable.
func classify(err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnprocessableEntity || statusErr.StatusCode == http.StatusBadRequest) {
		return fmt.Errorf("%w: %s", provider.ErrNoFaceDetected, statusErr.Body)
	}
	return domain.ErrRecognitionUnavailable.WithError(err)
}

func searchMode(mode provider.SearchMode) string {
	if mode == provider.SearchAccurate {
		return "ACCURATE"
	}
	return "FAST"
}
