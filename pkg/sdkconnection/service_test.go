package sdkconnection_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flagkit/pkg/sdkconnection"
	"github.com/dmitrymomot/flagkit/pkg/sdkversion"
)

func TestServiceCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("AssignsIdentity", func(t *testing.T) {
		t.Parallel()
		svc := sdkconnection.NewService(sdkconnection.NewMemoryStore())
		conn, err := svc.Create(ctx, "org1", validRequest(), defaultOrg())
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(conn.ID, "sdk_"))
		assert.True(t, strings.HasPrefix(conn.Key, "sdk-"))
		assert.Equal(t, "org1", conn.Organization)
		assert.Empty(t, conn.EncryptionKey) // no encryption requested
		assert.False(t, conn.DateCreated.IsZero())

		stored, err := svc.GetByKey(ctx, conn.Key)
		require.NoError(t, err)
		assert.Equal(t, conn.ID, stored.ID)
	})

	t.Run("GeneratesEncryptionKeyWhenEnabled", func(t *testing.T) {
		t.Parallel()
		svc := sdkconnection.NewService(sdkconnection.NewMemoryStore())
		org := defaultOrg()
		org.entitlements = []string{sdkconnection.PremiumFeatureEncryptedPayloads}
		req := validRequest()
		req.EncryptPayload = true

		conn, err := svc.Create(ctx, "org1", req, org)
		require.NoError(t, err)
		assert.NotEmpty(t, conn.EncryptionKey)
	})

	t.Run("RejectionDoesNotPersist", func(t *testing.T) {
		t.Parallel()
		store := sdkconnection.NewMemoryStore()
		svc := sdkconnection.NewService(store)
		req := validRequest()
		req.Name = "ab"

		_, err := svc.Create(ctx, "org1", req, defaultOrg())
		require.ErrorIs(t, err, sdkconnection.ErrInvalidName)

		conns, err := svc.List(ctx, "org1")
		require.NoError(t, err)
		assert.Empty(t, conns)
	})
}

func TestServiceUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := sdkconnection.NewService(sdkconnection.NewMemoryStore(),
		sdkconnection.WithClock(func() time.Time { return now }))

	conn, err := svc.Create(ctx, "org1", validRequest(), defaultOrg())
	require.NoError(t, err)

	t.Run("PreservesIdentity", func(t *testing.T) {
		now = now.Add(time.Hour)
		req := validRequest()
		req.Name = "prod renamed"
		req.Projects = []string{"p2"}

		updated, err := svc.Update(ctx, "org1", conn.ID, req, defaultOrg())
		require.NoError(t, err)

		assert.Equal(t, conn.ID, updated.ID)
		assert.Equal(t, conn.Key, updated.Key)
		assert.Equal(t, conn.DateCreated, updated.DateCreated)
		assert.True(t, updated.DateUpdated.After(updated.DateCreated))
		assert.Equal(t, "prod renamed", updated.Name)
		assert.Equal(t, []string{"p2"}, updated.Projects)
	})

	t.Run("RerunsValidation", func(t *testing.T) {
		req := validRequest()
		req.Environment = "nonexistent"
		_, err := svc.Update(ctx, "org1", conn.ID, req, defaultOrg())
		assert.ErrorIs(t, err, sdkconnection.ErrUnknownEnvironment)
	})

	t.Run("UnknownConnection", func(t *testing.T) {
		_, err := svc.Update(ctx, "org1", "sdk_missing", validRequest(), defaultOrg())
		assert.ErrorIs(t, err, sdkconnection.ErrConnectionNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newConn := func(id, org, key string) *sdkconnection.Connection {
		return &sdkconnection.Connection{
			ID:           id,
			Organization: org,
			Key:          key,
			Languages:    []sdkversion.Language{sdkversion.LanguageGolang},
		}
	}

	t.Run("CreateDuplicate", func(t *testing.T) {
		t.Parallel()
		store := sdkconnection.NewMemoryStore()
		require.NoError(t, store.Create(ctx, newConn("c1", "org1", "sdk-a")))
		assert.ErrorIs(t, store.Create(ctx, newConn("c1", "org1", "sdk-b")),
			sdkconnection.ErrConnectionExists)
	})

	t.Run("GetScopedToOrganization", func(t *testing.T) {
		t.Parallel()
		store := sdkconnection.NewMemoryStore()
		require.NoError(t, store.Create(ctx, newConn("c1", "org1", "sdk-a")))

		_, err := store.Get(ctx, "org2", "c1")
		assert.ErrorIs(t, err, sdkconnection.ErrConnectionNotFound)
	})

	t.Run("UpdateRekeys", func(t *testing.T) {
		t.Parallel()
		store := sdkconnection.NewMemoryStore()
		require.NoError(t, store.Create(ctx, newConn("c1", "org1", "sdk-a")))
		require.NoError(t, store.Update(ctx, newConn("c1", "org1", "sdk-b")))

		_, err := store.GetByKey(ctx, "sdk-a")
		assert.ErrorIs(t, err, sdkconnection.ErrConnectionNotFound)

		conn, err := store.GetByKey(ctx, "sdk-b")
		require.NoError(t, err)
		assert.Equal(t, "c1", conn.ID)
	})

	t.Run("DeleteRemovesKeyIndex", func(t *testing.T) {
		t.Parallel()
		store := sdkconnection.NewMemoryStore()
		require.NoError(t, store.Create(ctx, newConn("c1", "org1", "sdk-a")))
		require.NoError(t, store.Delete(ctx, "org1", "c1"))

		_, err := store.GetByKey(ctx, "sdk-a")
		assert.ErrorIs(t, err, sdkconnection.ErrConnectionNotFound)
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		t.Parallel()
		store := sdkconnection.NewMemoryStore()
		require.NoError(t, store.Create(ctx, newConn("c1", "org1", "sdk-a")))

		got, err := store.Get(ctx, "org1", "c1")
		require.NoError(t, err)
		got.Name = "mutated"

		again, err := store.Get(ctx, "org1", "c1")
		require.NoError(t, err)
		assert.Empty(t, again.Name)
	})
}
