package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"

	"github.com/dmitrijs2005/securedrive/internal/common"
	"golang.org/x/crypto/hkdf"
)

const authKeyInfo = "securedrive/auth/v1"

// DeriveAuthKey derives the login proof from an unwrapped Master Key with
// HKDF-SHA256. Only a client that managed to unwrap the Master Key can
// produce it, and it reveals nothing about the Master Key itself.
func DeriveAuthKey(masterKey []byte) ([]byte, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes", common.ErrorInvalidInput, KeySize)
	}

	out := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(authKeyInfo)), out); err != nil {
		return nil, err
	}
	return out, nil
}

// MakeVerifier returns SHA-256(authKey). The server stores only this value.
func MakeVerifier(authKey []byte) []byte {
	sum := sha256.Sum256(authKey)
	return sum[:]
}

// CheckVerifier reports in constant time whether candidate hashes to the
// stored verifier.
func CheckVerifier(verifier, candidate []byte) bool {
	if len(verifier) != sha256.Size || len(candidate) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(verifier, MakeVerifier(candidate)) == 1
}
