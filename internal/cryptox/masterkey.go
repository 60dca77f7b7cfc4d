package cryptox

import (
	"fmt"

	"github.com/dmitrijs2005/securedrive/internal/common"
)

// WrappedKey is the at-rest form of a Master Key: the sealed key plus
// everything except the password needed to open it again.
type WrappedKey struct {
	Ciphertext []byte
	Nonce      []byte
	Salt       []byte
}

// GenerateMasterKey returns a fresh 256-bit Master Key. It is created once
// per identity at registration and never rotated.
func GenerateMasterKey() []byte {
	return NewKey()
}

// WrapMasterKey seals masterKey under a key derived from password.
//
// A new salt and a new nonce are drawn on every call, so wrapping the same
// key twice never produces the same output.
func WrapMasterKey(masterKey, password []byte) (*WrappedKey, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes", common.ErrorInvalidInput, KeySize)
	}

	salt := NewSalt()
	wrappingKey, err := DeriveWrappingKey(password, salt)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(wrappingKey)

	nonce := NewNonce()
	ciphertext, err := Seal(wrappingKey, nonce, masterKey)
	if err != nil {
		return nil, err
	}

	return &WrappedKey{Ciphertext: ciphertext, Nonce: nonce, Salt: salt}, nil
}

// UnwrapMasterKey re-derives the wrapping key from password and the stored
// salt and opens the sealed Master Key.
//
// The AEAD tag is the only password check: a wrong password, a tampered
// record, or a decoy record for an unknown email all fail with
// common.ErrAuthFailure.
func UnwrapMasterKey(w *WrappedKey, password []byte) ([]byte, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: missing wrapped key", common.ErrorInvalidInput)
	}

	wrappingKey, err := DeriveWrappingKey(password, w.Salt)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(wrappingKey)

	masterKey, err := Open(wrappingKey, w.Nonce, w.Ciphertext)
	if err != nil {
		return nil, err
	}
	if len(masterKey) != KeySize {
		common.WipeByteArray(masterKey)
		return nil, common.ErrAuthFailure
	}
	return masterKey, nil
}
