package archetype_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flagkit/pkg/archetype"
	"github.com/dmitrymomot/flagkit/pkg/feature"
)

type fakeEntitlements struct {
	premium bool
}

func (f *fakeEntitlements) HasPremiumFeature(_ context.Context, entitlement string) bool {
	return f.premium && entitlement == archetype.PremiumFeatureArchetypes
}

func newService(t *testing.T, premium bool) (*archetype.Service, *archetype.MemoryStore) {
	t.Helper()
	store := archetype.NewMemoryStore()
	svc := archetype.NewService(store, &fakeEntitlements{premium: premium},
		archetype.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return svc, store
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("assigns identity and timestamps", func(t *testing.T) {
		t.Parallel()

		fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		store := archetype.NewMemoryStore()
		svc := archetype.NewService(store, &fakeEntitlements{premium: true},
			archetype.WithClock(func() time.Time { return fixed }))

		created, err := svc.Create(context.Background(), "org_1", &archetype.Archetype{
			Name:       "Free-tier mobile",
			Attributes: `{"id":"u1","plan":"free"}`,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Contains(t, created.ID, "arch_")
		assert.Equal(t, "org_1", created.Organization)
		assert.Equal(t, fixed, created.DateCreated)
		assert.Equal(t, fixed, created.DateUpdated)

		got, err := store.Get(context.Background(), "org_1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Free-tier mobile", got.Name)
	})

	t.Run("rejects malformed attribute document", func(t *testing.T) {
		t.Parallel()

		svc, store := newService(t, true)
		_, err := svc.Create(context.Background(), "org_1", &archetype.Archetype{
			Name:       "broken",
			Attributes: `{"id":`,
		})
		require.ErrorIs(t, err, archetype.ErrInvalidAttributes)

		list, err := store.List(context.Background(), "org_1")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("requires premium entitlement", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService(t, false)
		_, err := svc.Create(context.Background(), "org_1", &archetype.Archetype{
			Name:       "anyone",
			Attributes: `{}`,
		})
		require.ErrorIs(t, err, archetype.ErrPremiumRequired)
	})
}

func TestService_Update(t *testing.T) {
	t.Parallel()

	t.Run("preserves identity and creation time", func(t *testing.T) {
		t.Parallel()

		created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		updated := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		now := created

		store := archetype.NewMemoryStore()
		svc := archetype.NewService(store, &fakeEntitlements{premium: true},
			archetype.WithClock(func() time.Time { return now }))

		orig, err := svc.Create(context.Background(), "org_1", &archetype.Archetype{
			Name:       "before",
			Attributes: `{"plan":"free"}`,
		})
		require.NoError(t, err)

		now = updated
		got, err := svc.Update(context.Background(), "org_1", orig.ID, &archetype.Archetype{
			Name:       "after",
			Attributes: `{"plan":"pro"}`,
		})
		require.NoError(t, err)
		assert.Equal(t, orig.ID, got.ID)
		assert.Equal(t, "org_1", got.Organization)
		assert.Equal(t, "after", got.Name)
		assert.Equal(t, created, got.DateCreated)
		assert.Equal(t, updated, got.DateUpdated)
	})

	t.Run("unknown archetype", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService(t, true)
		_, err := svc.Update(context.Background(), "org_1", "arch_missing", &archetype.Archetype{
			Name:       "ghost",
			Attributes: `{}`,
		})
		require.ErrorIs(t, err, archetype.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, true)
	created, err := svc.Create(context.Background(), "org_1", &archetype.Archetype{
		Name:       "short-lived",
		Attributes: `{}`,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "org_1", created.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), "org_1", created.ID), archetype.ErrNotFound)
}

func TestService_EvaluateFeature(t *testing.T) {
	t.Parallel()

	def := &feature.FeatureDefinition{
		ID:           "checkout-redesign",
		ValueType:    feature.ValueTypeBoolean,
		DefaultValue: json.RawMessage(`false`),
		Rules: []feature.Rule{
			{
				ID:        "rule-pro",
				Condition: feature.Condition{"plan": "pro"},
				Force:     json.RawMessage(`true`),
			},
		},
	}

	t.Run("skips malformed archetypes and keeps the rest", func(t *testing.T) {
		t.Parallel()

		svc, store := newService(t, true)
		ctx := context.Background()

		for i := range 11 {
			plan := "free"
			if i%2 == 0 {
				plan = "pro"
			}
			require.NoError(t, store.Create(ctx, &archetype.Archetype{
				ID:           fmt.Sprintf("arch_%02d", i),
				Organization: "org_1",
				Name:         fmt.Sprintf("persona %d", i),
				Attributes:   fmt.Sprintf(`{"id":"u%d","plan":%q}`, i, plan),
			}))
		}
		require.NoError(t, store.Create(ctx, &archetype.Archetype{
			ID:           "arch_broken",
			Organization: "org_1",
			Name:         "broken persona",
			Attributes:   `{"id":`,
		}))

		results, err := svc.EvaluateFeature(ctx, "org_1", def, 5)
		require.NoError(t, err)
		require.Len(t, results, 11)
		assert.NotContains(t, results, "arch_broken")

		for i := range 11 {
			res, ok := results[fmt.Sprintf("arch_%02d", i)]
			require.True(t, ok)
			if i%2 == 0 {
				assert.True(t, res.On)
				assert.Equal(t, feature.SourceForce, res.Source)
				assert.Equal(t, "rule-pro", res.RuleID)
			} else {
				assert.False(t, res.On)
				assert.Equal(t, feature.SourceDefaultValue, res.Source)
			}
		}
	})

	t.Run("defaults concurrency when non-positive", func(t *testing.T) {
		t.Parallel()

		svc, store := newService(t, true)
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, &archetype.Archetype{
			ID:           "arch_only",
			Organization: "org_1",
			Name:         "only",
			Attributes:   `{"plan":"pro"}`,
		}))

		results, err := svc.EvaluateFeature(ctx, "org_1", def, 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.True(t, results["arch_only"].On)
	})

	t.Run("requires premium entitlement", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService(t, false)
		_, err := svc.EvaluateFeature(context.Background(), "org_1", def, 5)
		require.ErrorIs(t, err, archetype.ErrPremiumRequired)
	})

	t.Run("scoped to organization", func(t *testing.T) {
		t.Parallel()

		svc, store := newService(t, true)
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, &archetype.Archetype{
			ID:           "arch_other",
			Organization: "org_2",
			Name:         "someone else's",
			Attributes:   `{"plan":"pro"}`,
		}))

		results, err := svc.EvaluateFeature(ctx, "org_1", def, 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	t.Run("list sorted by creation time", func(t *testing.T) {
		t.Parallel()

		store := archetype.NewMemoryStore()
		ctx := context.Background()
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		for i, id := range []string{"arch_c", "arch_a", "arch_b"} {
			require.NoError(t, store.Create(ctx, &archetype.Archetype{
				ID:           id,
				Organization: "org_1",
				DateCreated:  base.Add(time.Duration(i) * time.Hour),
			}))
		}

		list, err := store.List(ctx, "org_1")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "arch_c", list[0].ID)
		assert.Equal(t, "arch_a", list[1].ID)
		assert.Equal(t, "arch_b", list[2].ID)
	})

	t.Run("cross-organization access denied", func(t *testing.T) {
		t.Parallel()

		store := archetype.NewMemoryStore()
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, &archetype.Archetype{
			ID:           "arch_1",
			Organization: "org_1",
		}))

		_, err := store.Get(ctx, "org_2", "arch_1")
		require.ErrorIs(t, err, archetype.ErrNotFound)
		require.ErrorIs(t, store.Delete(ctx, "org_2", "arch_1"), archetype.ErrNotFound)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		t.Parallel()

		store := archetype.NewMemoryStore()
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, &archetype.Archetype{ID: "arch_1", Organization: "org_1"}))
		require.ErrorIs(t, store.Create(ctx, &archetype.Archetype{ID: "arch_1", Organization: "org_1"}), archetype.ErrAlreadyExists)
	})

	t.Run("returned copies do not alias the store", func(t *testing.T) {
		t.Parallel()

		store := archetype.NewMemoryStore()
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, &archetype.Archetype{
			ID:           "arch_1",
			Organization: "org_1",
			Name:         "original",
		}))

		got, err := store.Get(ctx, "org_1", "arch_1")
		require.NoError(t, err)
		got.Name = "mutated"

		again, err := store.Get(ctx, "org_1", "arch_1")
		require.NoError(t, err)
		assert.Equal(t, "original", again.Name)
	})
}
