package payload

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// keySize is the AES-256 key length and the required size of decoded
// connection encryption keys.
const keySize = 32

// hkdfInfo provides domain separation for payload key derivation.
const hkdfInfo = "flagkit-sdk-payload-v1"

// encrypt seals the serialized feature map with AES-256-GCM and returns
// base64(nonce + ciphertext).
//
// The AES key is derived from the per-connection key (and the optional
// app-level key) via HKDF-SHA256. The nonce is not random: it is derived from
// the derived key and the plaintext (SIV-style), so encrypting the same
// payload with the same key always yields the same ciphertext. Payload
// compilation promises byte-identical output for unchanged input, and that
// promise has to survive encryption for upstream caches to work.
func encrypt(plaintext []byte, connectionKey string, appKey []byte) (string, error) {
	key, err := deriveKey(connectionKey, appKey)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	nonce := deriveNonce(key, plaintext, aesGCM.NonceSize())
	ciphertext := aesGCM.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses encrypt. It exists for SDK simulators and tests; the
// production consumer of ciphertext payloads is the SDK itself.
func Decrypt(encoded, connectionKey string, appKey []byte) ([]byte, error) {
	key, err := deriveKey(connectionKey, appKey)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(raw) < nonceSize {
		return nil, ErrEncryptionFailed
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return plaintext, nil
}

// deriveKey expands the base64-encoded connection key (optionally compounded
// with the app key) into an AES-256 key via HKDF-SHA256.
func deriveKey(connectionKey string, appKey []byte) ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(connectionKey)
	if err != nil {
		return nil, errors.Join(ErrInvalidEncryptionKey, err)
	}
	if len(secret) != keySize {
		return nil, ErrInvalidEncryptionKey
	}

	reader := hkdf.New(sha256.New, secret, appKey, []byte(hkdfInfo))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return key, nil
}

// deriveNonce computes the deterministic, plaintext-bound GCM nonce.
func deriveNonce(key, plaintext []byte, size int) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(plaintext)
	return mac.Sum(nil)[:size]
}
