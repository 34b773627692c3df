package sdkconnection

import (
	"context"
	"slices"
	"sync"
)

// Store persists SDK connections. Implementations live with the surrounding
// application; MemoryStore covers tests and single-process deployments.
type Store interface {
	// Create stores a new connection. Returns ErrConnectionExists when the id
	// is already taken.
	Create(ctx context.Context, conn *Connection) error

	// Update replaces an existing connection. Returns ErrConnectionNotFound
	// when the id is unknown.
	Update(ctx context.Context, conn *Connection) error

	// Get returns a connection by id within an organization.
	Get(ctx context.Context, organization, id string) (*Connection, error)

	// GetByKey returns a connection by its SDK API key.
	GetByKey(ctx context.Context, key string) (*Connection, error)

	// List returns all connections owned by an organization.
	List(ctx context.Context, organization string) ([]*Connection, error)

	// Delete removes a connection by id within an organization.
	Delete(ctx context.Context, organization, id string) error
}

// MemoryStore is an in-memory Store implementation guarded by a RWMutex.
// Stored connections are deep-copied on the way in and out so callers can
// never mutate shared state.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*Connection
	byKey map[string]string // API key -> connection id
}

// NewMemoryStore creates an empty in-memory connection store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]*Connection),
		byKey: make(map[string]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, conn *Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[conn.ID]; exists {
		return ErrConnectionExists
	}
	s.byID[conn.ID] = cloneConnection(conn)
	s.byKey[conn.Key] = conn.ID
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, conn *Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.byID[conn.ID]
	if !exists {
		return ErrConnectionNotFound
	}
	if existing.Key != conn.Key {
		delete(s.byKey, existing.Key)
		s.byKey[conn.Key] = conn.ID
	}
	s.byID[conn.ID] = cloneConnection(conn)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, organization, id string) (*Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, exists := s.byID[id]
	if !exists || conn.Organization != organization {
		return nil, ErrConnectionNotFound
	}
	return cloneConnection(conn), nil
}

func (s *MemoryStore) GetByKey(ctx context.Context, key string) (*Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byKey[key]
	if !exists {
		return nil, ErrConnectionNotFound
	}
	return cloneConnection(s.byID[id]), nil
}

func (s *MemoryStore) List(ctx context.Context, organization string) ([]*Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Connection
	for _, conn := range s.byID {
		if conn.Organization == organization {
			result = append(result, cloneConnection(conn))
		}
	}
	slices.SortFunc(result, func(a, b *Connection) int {
		return a.DateCreated.Compare(b.DateCreated)
	})
	return result, nil
}

func (s *MemoryStore) Delete(ctx context.Context, organization, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, exists := s.byID[id]
	if !exists || conn.Organization != organization {
		return ErrConnectionNotFound
	}
	delete(s.byKey, conn.Key)
	delete(s.byID, id)
	return nil
}

func cloneConnection(conn *Connection) *Connection {
	c := *conn
	c.Languages = slices.Clone(conn.Languages)
	c.Projects = slices.Clone(conn.Projects)
	return &c
}
