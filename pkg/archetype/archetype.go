package archetype

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/flagkit/pkg/feature"
)

// Archetype is an operator-defined synthetic user: a named attribute document
// used to preview how feature flags would resolve without a real user.
type Archetype struct {
	ID           string `json:"id"`
	Organization string `json:"organization"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Owner        string `json:"owner,omitempty"`
	IsPublic     bool   `json:"isPublic"`

	// Attributes holds the raw JSON attribute document as entered by the
	// operator. It is parsed lazily at evaluation time; a malformed document
	// skips the archetype rather than failing the batch.
	Attributes string `json:"attributes"`

	DateCreated time.Time `json:"dateCreated"`
	DateUpdated time.Time `json:"dateUpdated"`
}

// ParseAttributes decodes the stored attribute document.
func (a *Archetype) ParseAttributes() (feature.Attributes, error) {
	var attrs feature.Attributes
	if err := json.Unmarshal([]byte(a.Attributes), &attrs); err != nil {
		return nil, errors.Join(ErrInvalidAttributes, err)
	}
	return attrs, nil
}

// Store persists archetypes. Implementations live with the surrounding
// application; MemoryStore covers tests and single-process deployments.
type Store interface {
	Create(ctx context.Context, a *Archetype) error
	Update(ctx context.Context, a *Archetype) error
	Get(ctx context.Context, organization, id string) (*Archetype, error)
	List(ctx context.Context, organization string) ([]*Archetype, error)
	Delete(ctx context.Context, organization, id string) error
}

// MemoryStore is an in-memory Store implementation guarded by a RWMutex.
type MemoryStore struct {
	mu         sync.RWMutex
	archetypes map[string]*Archetype
}

// NewMemoryStore creates an empty in-memory archetype store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{archetypes: make(map[string]*Archetype)}
}

func (s *MemoryStore) Create(ctx context.Context, a *Archetype) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.archetypes[a.ID]; exists {
		return ErrAlreadyExists
	}
	clone := *a
	s.archetypes[a.ID] = &clone
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, a *Archetype) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.archetypes[a.ID]
	if !exists || existing.Organization != a.Organization {
		return ErrNotFound
	}
	clone := *a
	s.archetypes[a.ID] = &clone
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, organization, id string) (*Archetype, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.archetypes[id]
	if !exists || a.Organization != organization {
		return nil, ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (s *MemoryStore) List(ctx context.Context, organization string) ([]*Archetype, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Archetype
	for _, a := range s.archetypes {
		if a.Organization == organization {
			clone := *a
			result = append(result, &clone)
		}
	}
	slices.SortFunc(result, func(a, b *Archetype) int {
		return a.DateCreated.Compare(b.DateCreated)
	})
	return result, nil
}

func (s *MemoryStore) Delete(ctx context.Context, organization, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.archetypes[id]
	if !exists || a.Organization != organization {
		return ErrNotFound
	}
	delete(s.archetypes, id)
	return nil
}
