package payload

import (
	"encoding/base64"
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries the process-level settings for payload compilation.
type Config struct {
	// AppEncryptionKey is an optional base64-encoded application secret mixed
	// into payload encryption key derivation. Leave empty to derive keys from
	// connection keys alone.
	AppEncryptionKey string `env:"FLAGKIT_APP_ENCRYPTION_KEY"`
}

var loadEnvOnce sync.Once

// LoadConfig reads Config from the environment, loading a .env file first if
// one exists.
func LoadConfig() (Config, error) {
	loadEnvOnce.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AppKey decodes the configured application encryption key. An empty
// configuration yields a nil key, meaning no app-level secret is mixed in.
func (c Config) AppKey() ([]byte, error) {
	if c.AppEncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.AppEncryptionKey)
	if err != nil {
		return nil, errors.Join(ErrInvalidEncryptionKey, err)
	}
	return key, nil
}
