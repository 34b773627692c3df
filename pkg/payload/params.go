package payload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/flagkit/pkg/feature"
	"github.com/dmitrymomot/flagkit/pkg/sdkconnection"
	"github.com/dmitrymomot/flagkit/pkg/sdkversion"
)

// Params is everything the compiler needs to know about one requesting
// connection, resolved from its API key before compilation starts.
type Params struct {
	Organization string
	Environment  string
	Capabilities sdkversion.CapabilitySet
	Projects     []string

	EncryptPayload bool
	EncryptionKey  string

	IncludeVisualExperiments   bool
	IncludeDraftExperiments    bool
	IncludeExperimentNames     bool
	IncludeRedirectExperiments bool
	HashSecureAttributes       bool
}

// Resolver turns an SDK API key into compilation parameters. Unknown keys
// fail with ErrNotFound.
type Resolver interface {
	Resolve(ctx context.Context, apiKey string) (*Params, error)
}

// FeatureSource supplies an organization's feature and experiment state. The
// backing storage is an external collaborator; the compiler only consumes
// read-only snapshots.
type FeatureSource interface {
	// Features returns the organization's feature definition set for one
	// environment (per-environment rule selection is the source's concern).
	Features(ctx context.Context, organization, environment string) ([]*feature.FeatureDefinition, error)

	// Experiments returns the organization's auto experiments (visual
	// editor and URL redirect experiments).
	Experiments(ctx context.Context, organization string) ([]*AutoExperiment, error)

	// SecureAttributes returns the attribute names marked secure for the
	// organization and the per-organization hashing secret.
	SecureAttributes(ctx context.Context, organization string) (names []string, salt string, err error)
}

// AutoExperiment is an experiment applied by the SDK without a feature flag:
// a visual-editor change set or a URL redirect test.
type AutoExperiment struct {
	Key           string            `json:"key"`
	Condition     feature.Condition `json:"condition,omitempty"`
	Variations    []json.RawMessage `json:"variations,omitempty"`
	Weights       []float64         `json:"weights,omitempty"`
	Coverage      *float64          `json:"coverage,omitempty"`
	HashAttribute string            `json:"hashAttribute,omitempty"`
	Name          string            `json:"name,omitempty"`
	Projects      []string          `json:"-"`
	Draft         bool              `json:"-"`
	Visual        bool              `json:"-"`
	RedirectURL   string            `json:"urlRedirect,omitempty"`
	DateUpdated   time.Time         `json:"-"`
}

// ConnectionResolver resolves API keys against an sdkconnection store,
// translating the stored connection into compilation parameters.
type ConnectionResolver struct {
	connections ConnectionSource
	registry    *sdkversion.Registry
}

// ConnectionSource is the subset of the connection store the resolver needs.
type ConnectionSource interface {
	GetByKey(ctx context.Context, key string) (*sdkconnection.Connection, error)
}

// NewConnectionResolver builds a resolver on top of a connection source. A
// nil registry falls back to the built-in one.
func NewConnectionResolver(connections ConnectionSource, registry *sdkversion.Registry) *ConnectionResolver {
	if registry == nil {
		registry = sdkversion.Default()
	}
	return &ConnectionResolver{connections: connections, registry: registry}
}

func (r *ConnectionResolver) Resolve(ctx context.Context, apiKey string) (*Params, error) {
	conn, err := r.connections.GetByKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, sdkconnection.ErrConnectionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	capabilities, err := r.registry.CapabilitiesFor(conn.Language(), conn.SDKVersion)
	if err != nil {
		// A stored connection always passed validation, so a lookup failure
		// here means the registry and the stored data disagree.
		return nil, errors.Join(ErrInternal,
			fmt.Errorf("resolving capabilities for connection %s: %w", conn.ID, err))
	}

	return &Params{
		Organization: conn.Organization,
		Environment:  conn.Environment,
		Capabilities: capabilities,
		Projects:     conn.Projects,

		EncryptPayload: conn.EncryptPayload,
		EncryptionKey:  conn.EncryptionKey,

		IncludeVisualExperiments:   conn.IncludeVisualExperiments,
		IncludeDraftExperiments:    conn.IncludeDraftExperiments,
		IncludeExperimentNames:     conn.IncludeExperimentNames,
		IncludeRedirectExperiments: conn.IncludeRedirectExperiments,
		HashSecureAttributes:       conn.HashSecureAttributes,
	}, nil
}
