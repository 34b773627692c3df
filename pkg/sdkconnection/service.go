package sdkconnection

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/flagkit/pkg/sdkversion"
)

// Service manages the SDK connection lifecycle: validation, key generation,
// and persistence through a Store.
type Service struct {
	store    Store
	registry *sdkversion.Registry
	logger   *slog.Logger
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry overrides the capability registry. Defaults to the built-in
// registry.
func WithRegistry(registry *sdkversion.Registry) ServiceOption {
	return func(s *Service) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithClock overrides the time source, used by tests to pin timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a connection service backed by the given store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		registry: sdkversion.Default(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the request and persists a new connection for the
// organization. The connection receives a fresh id, API key, and, when
// payload encryption is enabled, an encryption key.
func (s *Service) Create(ctx context.Context, organization string, req *ConnectionRequest, org OrgContext) (*Connection, error) {
	conn, err := Validate(ctx, req, org, s.registry)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	conn.ID = "sdk_" + uuid.NewString()
	conn.Organization = organization
	conn.Key = newAPIKey()
	conn.DateCreated = now
	conn.DateUpdated = now
	if conn.EncryptPayload {
		conn.EncryptionKey = newEncryptionKey()
	}

	if err := s.store.Create(ctx, conn); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "sdk connection created",
		slog.String("connection_id", conn.ID),
		slog.String("organization", organization),
		slog.String("environment", conn.Environment),
		slog.String("language", string(conn.Language())))

	return conn, nil
}

// Update re-validates the request and replaces the stored connection,
// preserving its identity: id, API key, creation time, and any existing
// encryption key survive the update. Enabling encryption on a connection that
// never had a key generates one.
func (s *Service) Update(ctx context.Context, organization, id string, req *ConnectionRequest, org OrgContext) (*Connection, error) {
	existing, err := s.store.Get(ctx, organization, id)
	if err != nil {
		return nil, err
	}

	conn, err := Validate(ctx, req, org, s.registry)
	if err != nil {
		return nil, err
	}

	conn.ID = existing.ID
	conn.Organization = existing.Organization
	conn.Key = existing.Key
	conn.EncryptionKey = existing.EncryptionKey
	conn.DateCreated = existing.DateCreated
	conn.DateUpdated = s.now().UTC()
	if conn.EncryptPayload && conn.EncryptionKey == "" {
		conn.EncryptionKey = newEncryptionKey()
	}

	if err := s.store.Update(ctx, conn); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "sdk connection updated",
		slog.String("connection_id", conn.ID),
		slog.String("organization", organization))

	return conn, nil
}

// Get returns one connection by id.
func (s *Service) Get(ctx context.Context, organization, id string) (*Connection, error) {
	return s.store.Get(ctx, organization, id)
}

// GetByKey resolves a connection from its SDK API key.
func (s *Service) GetByKey(ctx context.Context, key string) (*Connection, error) {
	return s.store.GetByKey(ctx, key)
}

// List returns all connections owned by the organization.
func (s *Service) List(ctx context.Context, organization string) ([]*Connection, error) {
	return s.store.List(ctx, organization)
}

// Delete removes a connection.
func (s *Service) Delete(ctx context.Context, organization, id string) error {
	if err := s.store.Delete(ctx, organization, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "sdk connection deleted",
		slog.String("connection_id", id),
		slog.String("organization", organization))
	return nil
}

// newAPIKey generates an SDK API key. The "sdk-" prefix lets operators tell
// SDK keys apart from other credentials at a glance.
func newAPIKey() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Errorf("sdkconnection: failed to read random bytes: %w", err))
	}
	return "sdk-" + hex.EncodeToString(buf)
}

// newEncryptionKey generates a per-connection payload encryption key,
// base64-encoded for storage and for display in SDK setup instructions.
func newEncryptionKey() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Errorf("sdkconnection: failed to read random bytes: %w", err))
	}
	return base64.StdEncoding.EncodeToString(buf)
}
