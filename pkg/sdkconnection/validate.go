package sdkconnection

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrymomot/flagkit/pkg/sdkversion"
)

// PremiumFeatureEncryptedPayloads is the entitlement gating payload
// encryption.
const PremiumFeatureEncryptedPayloads = "encrypt-features-endpoint"

// PremiumFeatureHashSecureAttributes is the entitlement gating the secure
// attribute hashing transform.
const PremiumFeatureHashSecureAttributes = "hash-secure-attributes"

// capabilityGates and premiumGates are declarative rule tables: each row
// guards one boolean request field with a capability or entitlement. New
// gated settings are added as rows, not as new validation branches.
var capabilityGates = []struct {
	capability sdkversion.Capability
	field      string
	enabled    func(*ConnectionRequest) bool
}{
	{sdkversion.CapabilityEncryption, "encryptPayload",
		func(r *ConnectionRequest) bool { return r.EncryptPayload }},
	{sdkversion.CapabilityRemoteEval, "remoteEvalEnabled",
		func(r *ConnectionRequest) bool { return r.RemoteEvalEnabled }},
}

var premiumGates = []struct {
	entitlement string
	field       string
	enabled     func(*ConnectionRequest) bool
}{
	{PremiumFeatureEncryptedPayloads, "encryptPayload",
		func(r *ConnectionRequest) bool { return r.EncryptPayload }},
	{PremiumFeatureHashSecureAttributes, "hashSecureAttributes",
		func(r *ConnectionRequest) bool { return r.HashSecureAttributes }},
}

// Validate checks a connection request against the organization context and
// the capability registry, producing the canonical connection payload.
//
// Checks run in a fixed order and the first violation wins, which keeps error
// messages deterministic: name, environment, projects, language, version
// resolution, capability gates, premium gates. The returned connection has
// SDKVersion resolved (registry latest when the request omitted it) and
// Languages normalized to a one-element list. Validate has no side effects;
// persistence belongs to the caller.
func Validate(ctx context.Context, req *ConnectionRequest, org OrgContext, registry *sdkversion.Registry) (*Connection, error) {
	if len(req.Name) < 3 {
		return nil, errors.Join(ErrInvalidName, fmt.Errorf("got %q", req.Name))
	}

	environments, err := org.Environments(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(environments, req.Environment) {
		return nil, errors.Join(ErrUnknownEnvironment,
			fmt.Errorf("environment %q does not exist", req.Environment))
	}

	if len(req.Projects) > 0 {
		known, err := org.Projects(ctx)
		if err != nil {
			return nil, err
		}
		var missing []string
		for _, p := range req.Projects {
			if !slices.Contains(known, p) {
				missing = append(missing, p)
			}
		}
		if len(missing) > 0 {
			return nil, errors.Join(ErrUnknownProject,
				fmt.Errorf("the following projects do not exist: %s", strings.Join(missing, ", ")))
		}
	}

	if req.Language == "" {
		return nil, ErrMissingLanguage
	}
	if !registry.Supports(req.Language) {
		return nil, errors.Join(ErrUnsupportedLanguage,
			fmt.Errorf("language %q is not supported", req.Language))
	}

	version := req.SDKVersion
	if version == "" {
		version, err = registry.LatestVersion(req.Language)
		if err != nil {
			return nil, err
		}
	}

	capabilities, err := registry.CapabilitiesFor(req.Language, version)
	if err != nil {
		return nil, err
	}

	for _, gate := range capabilityGates {
		if gate.enabled(req) && !capabilities.Has(gate.capability) {
			return nil, errors.Join(ErrUnsupportedCapability,
				fmt.Errorf("sdk version %s does not support %s (required by %s)",
					version, gate.capability, gate.field))
		}
	}

	for _, gate := range premiumGates {
		if gate.enabled(req) && !org.HasPremiumFeature(ctx, gate.entitlement) {
			return nil, errors.Join(ErrPremiumRequired,
				fmt.Errorf("%s requires the %q entitlement", gate.field, gate.entitlement))
		}
	}

	return &Connection{
		Name:        req.Name,
		Environment: req.Environment,
		SDKVersion:  version,
		Languages:   []sdkversion.Language{req.Language},
		Projects:    slices.Clone(req.Projects),

		EncryptPayload:             req.EncryptPayload,
		IncludeVisualExperiments:   req.IncludeVisualExperiments,
		IncludeDraftExperiments:    req.IncludeDraftExperiments,
		IncludeExperimentNames:     req.IncludeExperimentNames,
		IncludeRedirectExperiments: req.IncludeRedirectExperiments,
		HashSecureAttributes:       req.HashSecureAttributes,
		RemoteEvalEnabled:          req.RemoteEvalEnabled,

		ProxyEnabled: req.ProxyEnabled,
		ProxyHost:    req.ProxyHost,
	}, nil
}
