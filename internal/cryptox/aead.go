// Package cryptox implements the client-side cryptography of SecureDrive:
// AES-256-GCM sealing with explicit nonces, password-based key derivation,
// Master Key wrapping and the per-file envelope.
//
// Every function here is stateless and safe to call concurrently. Failures
// are reported with the sentinels in package common: common.ErrorInvalidInput
// for malformed arguments and common.ErrAuthFailure for any tag mismatch.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/dmitrijs2005/securedrive/internal/common"
)

const (
	// KeySize is the length of every symmetric key (AES-256).
	KeySize = 32
	// NonceSize is the GCM nonce length.
	NonceSize = 12
	// TagSize is the GCM authentication tag length appended by Seal.
	TagSize = 16
	// SaltSize is the length of the KDF salt.
	SaltSize = 16
	// WrappedKeySize is the length of a key sealed under another key.
	WrappedKeySize = KeySize + TagSize
)

// Seal encrypts plaintext with AES-256-GCM under key and nonce and returns
// ciphertext||tag. No associated data is used.
//
// Parameters:
//
//	key       - 32-byte key
//	nonce     - 12-byte nonce, never reused with the same key
//	plaintext - data to protect
//
// Returns common.ErrorInvalidInput if key or nonce have the wrong length.
func Seal(key, nonce, plaintext []byte) ([]byte, error) {
	aead, err := newGCM(key, nonce)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// Open verifies and decrypts ciphertext||tag produced by Seal.
//
// Any tag mismatch (wrong key, flipped bit, truncated input) yields
// common.ErrAuthFailure and no plaintext.
func Open(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := newGCM(key, nonce)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrAuthFailure
	}
	return plaintext, nil
}

// NewKey returns a fresh random 256-bit key.
func NewKey() []byte { return common.GenerateRandByteArray(KeySize) }

// NewNonce returns a fresh random 96-bit nonce.
func NewNonce() []byte { return common.GenerateRandByteArray(NonceSize) }

// NewSalt returns a fresh random 128-bit KDF salt.
func NewSalt() []byte { return common.GenerateRandByteArray(SaltSize) }

func newGCM(key, nonce []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", common.ErrorInvalidInput, KeySize, len(key))
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", common.ErrorInvalidInput, NonceSize, len(nonce))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
