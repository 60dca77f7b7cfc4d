package cryptox

import (
	"crypto/sha256"
	"fmt"

	"github.com/dmitrijs2005/securedrive/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

// KDFIterations is the PBKDF2 work factor.
const KDFIterations = 100_000

// DeriveWrappingKey turns a password and salt into a 256-bit key using
// PBKDF2-HMAC-SHA256 with KDFIterations rounds.
//
// The result is deterministic for a fixed (password, salt) pair and is meant
// only for wrapping and unwrapping the Master Key. Callers should wipe it
// with common.WipeByteArray once done.
//
// Returns common.ErrorInvalidInput if password or salt is empty.
func DeriveWrappingKey(password, salt []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: empty password", common.ErrorInvalidInput)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", common.ErrorInvalidInput)
	}
	return pbkdf2.Key(password, salt, KDFIterations, KeySize, sha256.New), nil
}
