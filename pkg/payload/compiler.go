package payload

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/flagkit/pkg/feature"
)

// CompiledPayload is the feature-definitions document served to one SDK
// connection. Exactly one of Features/EncryptedFeatures is populated (same
// for experiments): plaintext for ordinary connections, ciphertext when the
// connection requested and is entitled to encryption.
type CompiledPayload struct {
	Features    map[string]*feature.FeatureDefinition `json:"features,omitempty"`
	Experiments []*AutoExperiment                     `json:"experiments,omitempty"`

	EncryptedFeatures    string `json:"encryptedFeatures,omitempty"`
	EncryptedExperiments string `json:"encryptedExperiments,omitempty"`

	DateUpdated time.Time `json:"dateUpdated"`
}

// JSON serializes the payload. Map keys are emitted sorted, so unchanged
// inputs always produce byte-identical documents; upstream caches rely on
// that.
func (p *CompiledPayload) JSON() ([]byte, error) {
	return json.Marshal(p)
}

// Compiler produces tailored feature-definition payloads per SDK connection.
// It is read-only with respect to feature state and safe for concurrent use.
type Compiler struct {
	resolver Resolver
	source   FeatureSource
	appKey   []byte
	logger   *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAppKey mixes an application-level secret into payload encryption key
// derivation, so a leaked per-connection key alone cannot decrypt payloads.
func WithAppKey(key []byte) Option {
	return func(c *Compiler) {
		if len(key) > 0 {
			c.appKey = key
		}
	}
}

// New creates a payload compiler.
func New(resolver Resolver, source FeatureSource, opts ...Option) *Compiler {
	c := &Compiler{
		resolver: resolver,
		source:   source,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Overrides carries request-time adjustments to a connection's resolved
// scope. Zero values leave the connection's own settings in place.
type Overrides struct {
	// Environment replaces the connection's environment.
	Environment string

	// Projects replaces the connection's project scope.
	Projects []string

	// EncryptPayload forces encryption on or off for this request. Forcing
	// it on still requires the connection to carry an encryption key.
	EncryptPayload *bool
}

func (p *Params) apply(o *Overrides) {
	if o == nil {
		return
	}
	if o.Environment != "" {
		p.Environment = o.Environment
	}
	if len(o.Projects) > 0 {
		p.Projects = o.Projects
	}
	if o.EncryptPayload != nil {
		p.EncryptPayload = *o.EncryptPayload
	}
}

// Compile resolves the API key and builds the connection's payload: the
// organization's features filtered to what the connection may see, stripped
// of anything its capability set does not support, optionally with secure
// attributes hashed and the result encrypted.
//
// Compile is idempotent: unchanged feature state and unchanged connection
// scope yield byte-identical output.
func (c *Compiler) Compile(ctx context.Context, apiKey string, overrides *Overrides) (*CompiledPayload, error) {
	params, err := c.resolver.Resolve(ctx, apiKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, c.internal(ctx, "resolving api key", err)
	}
	params.apply(overrides)

	features, err := c.source.Features(ctx, params.Organization, params.Environment)
	if err != nil {
		return nil, c.internal(ctx, "loading features", err)
	}
	experiments, err := c.source.Experiments(ctx, params.Organization)
	if err != nil {
		return nil, c.internal(ctx, "loading experiments", err)
	}

	var secureAttrs []string
	var salt string
	if params.HashSecureAttributes {
		secureAttrs, salt, err = c.source.SecureAttributes(ctx, params.Organization)
		if err != nil {
			return nil, c.internal(ctx, "loading secure attributes", err)
		}
	}

	payload := &CompiledPayload{
		Features: make(map[string]*feature.FeatureDefinition),
	}

	for _, def := range features {
		if !def.InProjects(params.Projects) {
			continue
		}
		if err := def.Validate(); err != nil {
			c.logger.WarnContext(ctx, "skipping invalid feature definition",
				slog.String("feature", def.ID),
				slog.String("organization", params.Organization),
				slog.Any("error", err))
			continue
		}
		compiled := transformFeature(def, params, secureAttrs, salt)
		payload.Features[def.ID] = compiled

		if def.DateUpdated.After(payload.DateUpdated) {
			payload.DateUpdated = def.DateUpdated
		}
	}

	for _, exp := range experiments {
		compiled, ok := transformExperiment(exp, params, secureAttrs, salt)
		if !ok {
			continue
		}
		payload.Experiments = append(payload.Experiments, compiled)

		if exp.DateUpdated.After(payload.DateUpdated) {
			payload.DateUpdated = exp.DateUpdated
		}
	}

	if params.EncryptPayload && params.EncryptionKey != "" {
		if err := c.encryptPayload(payload, params.EncryptionKey); err != nil {
			return nil, c.internal(ctx, "encrypting payload", err)
		}
	}

	return payload, nil
}

// encryptPayload replaces the plaintext feature map (and experiment list,
// when present) with ciphertext. The plaintext fields are cleared so the two
// representations can never coexist in one payload.
func (c *Compiler) encryptPayload(payload *CompiledPayload, key string) error {
	featuresJSON, err := json.Marshal(payload.Features)
	if err != nil {
		return err
	}
	encrypted, err := encrypt(featuresJSON, key, c.appKey)
	if err != nil {
		return err
	}
	payload.EncryptedFeatures = encrypted
	payload.Features = nil

	if len(payload.Experiments) > 0 {
		experimentsJSON, err := json.Marshal(payload.Experiments)
		if err != nil {
			return err
		}
		encrypted, err := encrypt(experimentsJSON, key, c.appKey)
		if err != nil {
			return err
		}
		payload.EncryptedExperiments = encrypted
		payload.Experiments = nil
	}

	return nil
}

// internal logs the detailed failure and returns the generic ErrInternal so
// callers never see internal state.
func (c *Compiler) internal(ctx context.Context, op string, err error) error {
	c.logger.ErrorContext(ctx, "payload compilation failed",
		slog.String("op", op),
		slog.Any("error", err))
	return ErrInternal
}
