package sdkconnection

import (
	"context"
	"time"

	"github.com/dmitrymomot/flagkit/pkg/sdkversion"
)

// ConnectionRequest is the transient, client-supplied configuration for
// creating or updating an SDK connection. It exists only for the duration of
// a validate call.
type ConnectionRequest struct {
	Name        string              `json:"name"`
	Environment string              `json:"environment"`
	SDKVersion  string              `json:"sdkVersion,omitempty"`
	Language    sdkversion.Language `json:"language"`
	Projects    []string            `json:"projects,omitempty"`

	EncryptPayload             bool `json:"encryptPayload,omitempty"`
	IncludeVisualExperiments   bool `json:"includeVisualExperiments,omitempty"`
	IncludeDraftExperiments    bool `json:"includeDraftExperiments,omitempty"`
	IncludeExperimentNames     bool `json:"includeExperimentNames,omitempty"`
	IncludeRedirectExperiments bool `json:"includeRedirectExperiments,omitempty"`
	HashSecureAttributes       bool `json:"hashSecureAttributes,omitempty"`
	RemoteEvalEnabled          bool `json:"remoteEvalEnabled,omitempty"`

	ProxyEnabled bool   `json:"proxyEnabled,omitempty"`
	ProxyHost    string `json:"proxyHost,omitempty"`
}

// Connection is the canonical, persisted record produced by successful
// validation. It is owned by an organization and referenced by API key at
// payload-compilation time. The compiler never mutates it.
type Connection struct {
	ID           string                `json:"id"`
	Organization string                `json:"organization"`
	Name         string                `json:"name"`
	Environment  string                `json:"environment"`
	SDKVersion   string                `json:"sdkVersion"`
	Languages    []sdkversion.Language `json:"languages"`
	Projects     []string              `json:"projects"`

	// Key is the API key SDK clients present to fetch their payload.
	Key string `json:"key"`

	// EncryptionKey is the per-connection secret used to encrypt the compiled
	// payload when EncryptPayload is set.
	EncryptionKey string `json:"encryptionKey,omitempty"`

	EncryptPayload             bool `json:"encryptPayload"`
	IncludeVisualExperiments   bool `json:"includeVisualExperiments"`
	IncludeDraftExperiments    bool `json:"includeDraftExperiments"`
	IncludeExperimentNames     bool `json:"includeExperimentNames"`
	IncludeRedirectExperiments bool `json:"includeRedirectExperiments"`
	HashSecureAttributes       bool `json:"hashSecureAttributes"`
	RemoteEvalEnabled          bool `json:"remoteEvalEnabled"`

	ProxyEnabled bool   `json:"proxyEnabled,omitempty"`
	ProxyHost    string `json:"proxyHost,omitempty"`

	DateCreated time.Time `json:"dateCreated"`
	DateUpdated time.Time `json:"dateUpdated"`
}

// Language returns the connection's single SDK language. Languages is stored
// as a one-element list reserved for future multi-language connections.
func (c *Connection) Language() sdkversion.Language {
	if len(c.Languages) == 0 {
		return ""
	}
	return c.Languages[0]
}

// OrgContext supplies the organization-level data validation needs. The
// backing storage is an external collaborator; only the read contract matters
// here.
type OrgContext interface {
	// Environments returns the ids of the organization's configured
	// environments.
	Environments(ctx context.Context) ([]string, error)

	// Projects returns the ids of the organization's projects.
	Projects(ctx context.Context) ([]string, error)

	// HasPremiumFeature reports whether the organization's plan includes the
	// named entitlement.
	HasPremiumFeature(ctx context.Context, entitlement string) bool
}
