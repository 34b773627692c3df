package payload_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flagkit/pkg/payload"
	"github.com/dmitrymomot/flagkit/pkg/sdkconnection"
	"github.com/dmitrymomot/flagkit/pkg/sdkversion"
)

func TestConnectionResolver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := sdkconnection.NewMemoryStore()
	require.NoError(t, store.Create(ctx, &sdkconnection.Connection{
		ID:           "c1",
		Organization: "org1",
		Environment:  "production",
		Key:          "sdk-abc",
		SDKVersion:   "0.29.0",
		Languages:    []sdkversion.Language{sdkversion.LanguageJavascript},
		Projects:     []string{"p1"},

		EncryptPayload:       true,
		EncryptionKey:        "key-material",
		HashSecureAttributes: true,
	}))

	resolver := payload.NewConnectionResolver(store, nil)

	t.Run("ResolvesConnection", func(t *testing.T) {
		t.Parallel()
		params, err := resolver.Resolve(ctx, "sdk-abc")
		require.NoError(t, err)

		assert.Equal(t, "org1", params.Organization)
		assert.Equal(t, "production", params.Environment)
		assert.Equal(t, []string{"p1"}, params.Projects)
		assert.True(t, params.EncryptPayload)
		assert.Equal(t, "key-material", params.EncryptionKey)
		assert.True(t, params.HashSecureAttributes)
		// 0.29.0 carries remoteEval but not redirects.
		assert.True(t, params.Capabilities.Has(sdkversion.CapabilityRemoteEval))
		assert.False(t, params.Capabilities.Has(sdkversion.CapabilityRedirects))
	})

	t.Run("UnknownKey", func(t *testing.T) {
		t.Parallel()
		_, err := resolver.Resolve(ctx, "sdk-missing")
		assert.ErrorIs(t, err, payload.ErrNotFound)
	})
}

func TestConfigAppKey(t *testing.T) {
	t.Parallel()

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()
		key, err := payload.Config{}.AppKey()
		require.NoError(t, err)
		assert.Nil(t, key)
	})

	t.Run("Base64", func(t *testing.T) {
		t.Parallel()
		cfg := payload.Config{AppEncryptionKey: "c2VjcmV0LWtleQ=="}
		key, err := cfg.AppKey()
		require.NoError(t, err)
		assert.Equal(t, []byte("secret-key"), key)
	})

	t.Run("Malformed", func(t *testing.T) {
		t.Parallel()
		cfg := payload.Config{AppEncryptionKey: "%%%"}
		_, err := cfg.AppKey()
		assert.ErrorIs(t, err, payload.ErrInvalidEncryptionKey)
	})
}
