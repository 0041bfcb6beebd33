package mock

import (
	"context"
	"crypto/sha256"
	"sync"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider"
)

// Provider implementa provider.Recognizer para testes e desenvolvimento.
// Imagens cadastradas são reconhecidas pelo hash; qualquer outra imagem
// retorna a pessoa padrão, se houver.
type Provider struct {
	mu       sync.Mutex
	enrolled map[[sha256.Size]byte]provider.Person
	fallback *domain.Match
	err      error
	calls    int
}

// New cria uma nova instância do MockProvider
func New() *Provider {
	return &Provider{
		enrolled: make(map[[sha256.Size]byte]provider.Person),
	}
}

// WithDefaultPerson makes every unknown face resolve to id/name.
func (p *Provider) WithDefaultPerson(id, name string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id == "" {
		p.fallback = nil
		return p
	}
	p.fallback = &domain.Match{PersonID: id, PersonName: name, Score: 0.9}
	return p
}

// FailWith makes subsequent calls return err until cleared with nil.
func (p *Provider) FailWith(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Calls is the number of Search calls made so far.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *Provider) Name() string { return "mock" }

// Search simula uma busca 1:N
func (p *Provider) Search(ctx context.Context, image []byte, opts provider.SearchOptions) ([]domain.Match, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++

	if err := ctx.Err(); err != nil {
		return nil, domain.ErrRecognitionUnavailable.WithError(err)
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := provider.ValidateImage(image); err != nil {
		return nil, err
	}

	if person, ok := p.enrolled[sha256.Sum256(image)]; ok {
		return []domain.Match{{PersonID: person.ID, PersonName: person.Name, Score: 0.99}}, nil
	}
	if p.fallback != nil && p.fallback.Score >= opts.MinScore {
		return []domain.Match{*p.fallback}, nil
	}
	return []domain.Match{}, nil
}

// Enroll registra as imagens da pessoa pelo hash
func (p *Provider) Enroll(_ context.Context, person provider.Person) (int, error) {
	if person.ID == "" || len(person.Images) == 0 {
		return 0, provider.ErrInvalidPerson
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, image := range person.Images {
		p.enrolled[sha256.Sum256(image)] = provider.Person{ID: person.ID, Name: person.Name}
	}
	return len(person.Images), nil
}

// FaceCount conta as imagens cadastradas
func (p *Provider) FaceCount(_ context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.enrolled), nil
}

func (p *Provider) Reset(_ context.Context) error {
	p.mu.Lock()
	p.enrolled = make(map[[sha256.Size]byte]provider.Person)
	p.mu.Unlock()
	return nil
}

var (
	_ provider.Recognizer = (*Provider)(nil)
	_ provider.Enroller   = (*Provider)(nil)
	_ provider.Gallery    = (*Provider)(nil)
)
