package archetype

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/flagkit/pkg/async"
	"github.com/dmitrymomot/flagkit/pkg/feature"
)

// PremiumFeatureArchetypes is the entitlement gating archetype management and
// preview evaluation.
const PremiumFeatureArchetypes = "archetypes"

// DefaultEvalConcurrency bounds how many archetype evaluations run at once
// during a preview batch.
const DefaultEvalConcurrency = 5

// Entitlements answers premium-feature checks for an organization. The
// billing data behind it is an external collaborator.
type Entitlements interface {
	HasPremiumFeature(ctx context.Context, entitlement string) bool
}

// Service manages archetypes and runs preview evaluations against them.
type Service struct {
	store        Store
	entitlements Entitlements
	logger       *slog.Logger
	now          func() time.Time
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

// WithClock overrides the time source, used by tests to pin timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates an archetype service.
func NewService(store Store, entitlements Entitlements, opts ...ServiceOption) *Service {
	s := &Service{
		store:        store,
		entitlements: entitlements,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new archetype for the organization.
func (s *Service) Create(ctx context.Context, organization string, a *Archetype) (*Archetype, error) {
	if !s.entitlements.HasPremiumFeature(ctx, PremiumFeatureArchetypes) {
		return nil, ErrPremiumRequired
	}
	if err := validateAttributes(a.Attributes); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	clone := *a
	clone.ID = "arch_" + uuid.NewString()
	clone.Organization = organization
	clone.DateCreated = now
	clone.DateUpdated = now

	if err := s.store.Create(ctx, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

// Update replaces an archetype's mutable fields, keeping its identity.
func (s *Service) Update(ctx context.Context, organization, id string, a *Archetype) (*Archetype, error) {
	if !s.entitlements.HasPremiumFeature(ctx, PremiumFeatureArchetypes) {
		return nil, ErrPremiumRequired
	}
	if err := validateAttributes(a.Attributes); err != nil {
		return nil, err
	}

	existing, err := s.store.Get(ctx, organization, id)
	if err != nil {
		return nil, err
	}

	clone := *a
	clone.ID = existing.ID
	clone.Organization = existing.Organization
	clone.DateCreated = existing.DateCreated
	clone.DateUpdated = s.now().UTC()

	if err := s.store.Update(ctx, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

// List returns the organization's archetypes.
func (s *Service) List(ctx context.Context, organization string) ([]*Archetype, error) {
	return s.store.List(ctx, organization)
}

// Delete removes an archetype.
func (s *Service) Delete(ctx context.Context, organization, id string) error {
	return s.store.Delete(ctx, organization, id)
}

// EvaluateFeature resolves one feature definition against every archetype in
// the organization with bounded concurrency, returning one result per
// archetype keyed by archetype id.
//
// Archetypes whose attribute document fails to parse are omitted from the
// result, never aborting the batch; the remaining archetypes still produce
// results. A non-positive concurrency falls back to DefaultEvalConcurrency.
func (s *Service) EvaluateFeature(ctx context.Context, organization string, def *feature.FeatureDefinition, concurrency int) (map[string]feature.Result, error) {
	if !s.entitlements.HasPremiumFeature(ctx, PremiumFeatureArchetypes) {
		return nil, ErrPremiumRequired
	}
	if concurrency <= 0 {
		concurrency = DefaultEvalConcurrency
	}

	archetypes, err := s.store.List(ctx, organization)
	if err != nil {
		return nil, err
	}

	type item struct {
		id    string
		attrs feature.Attributes
	}

	items := make([]item, 0, len(archetypes))
	for _, a := range archetypes {
		attrs, err := a.ParseAttributes()
		if err != nil {
			s.logger.DebugContext(ctx, "skipping archetype with malformed attributes",
				slog.String("archetype_id", a.ID),
				slog.String("organization", organization))
			continue
		}
		items = append(items, item{id: a.ID, attrs: attrs})
	}

	evaluations, err := async.Map(ctx, concurrency, items,
		func(ctx context.Context, it item) (feature.Result, error) {
			return feature.Evaluate(def, it.attrs), nil
		})
	if err != nil {
		return nil, err
	}

	results := make(map[string]feature.Result, len(items))
	for i, eval := range evaluations {
		if eval.Err != nil {
			// Evaluation is pure and total; an error here means the task
			// panicked on malformed data. Skip the item, keep the batch.
			s.logger.WarnContext(ctx, "archetype evaluation failed",
				slog.String("archetype_id", items[i].id),
				slog.Any("error", eval.Err))
			continue
		}
		results[items[i].id] = eval.Value
	}
	return results, nil
}

func validateAttributes(doc string) error {
	var attrs map[string]any
	if err := json.Unmarshal([]byte(doc), &attrs); err != nil {
		return ErrInvalidAttributes
	}
	return nil
}
