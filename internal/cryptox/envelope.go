package cryptox

import (
	"fmt"

	"github.com/dmitrijs2005/securedrive/internal/common"
)

// Envelope is everything needed to store one encrypted file on the server.
//
// Ciphertext is self-describing: fileNonce(12) || AES-GCM(content) || tag.
// The content key (CEK) exists only as WrappedCEK, sealed under the owner's
// Master Key; the display name is sealed under the same CEK.
type Envelope struct {
	Ciphertext    []byte
	WrappedCEK    []byte
	CEKWrapNonce  []byte
	EncryptedName []byte
	NameNonce     []byte
}

// EncryptFile seals plaintext and displayName under a fresh CEK and wraps
// the CEK under masterKey. Four independent nonces are drawn per call and
// the CEK is wiped before returning.
func EncryptFile(plaintext, masterKey []byte, displayName string) (*Envelope, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes", common.ErrorInvalidInput, KeySize)
	}

	cek := NewKey()
	defer common.WipeByteArray(cek)

	fileNonce := NewNonce()
	sealed, err := Seal(cek, fileNonce, plaintext)
	if err != nil {
		return nil, err
	}
	ciphertext := make([]byte, 0, NonceSize+len(sealed))
	ciphertext = append(ciphertext, fileNonce...)
	ciphertext = append(ciphertext, sealed...)

	wrapNonce := NewNonce()
	wrappedCEK, err := Seal(masterKey, wrapNonce, cek)
	if err != nil {
		return nil, err
	}

	nameNonce := NewNonce()
	encryptedName, err := Seal(cek, nameNonce, []byte(displayName))
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Ciphertext:    ciphertext,
		WrappedCEK:    wrappedCEK,
		CEKWrapNonce:  wrapNonce,
		EncryptedName: encryptedName,
		NameNonce:     nameNonce,
	}, nil
}

// DecryptFile reverses EncryptFile. Any tag mismatch, whether in the CEK
// wrap, the content or the name, returns common.ErrAuthFailure and no
// plaintext at all. A foreign or stale Master Key fails the same way.
func DecryptFile(env *Envelope, masterKey []byte) ([]byte, string, error) {
	cek, err := unwrapCEK(env, masterKey)
	if err != nil {
		return nil, "", err
	}
	defer common.WipeByteArray(cek)

	if len(env.Ciphertext) < NonceSize+TagSize {
		return nil, "", common.ErrAuthFailure
	}

	plaintext, err := Open(cek, env.Ciphertext[:NonceSize], env.Ciphertext[NonceSize:])
	if err != nil {
		return nil, "", err
	}

	name, err := Open(cek, env.NameNonce, env.EncryptedName)
	if err != nil {
		common.WipeByteArray(plaintext)
		return nil, "", err
	}

	return plaintext, string(name), nil
}

// DecryptFileName recovers only the display name. Listings use it so they
// do not have to download blobs.
func DecryptFileName(env *Envelope, masterKey []byte) (string, error) {
	cek, err := unwrapCEK(env, masterKey)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(cek)

	name, err := Open(cek, env.NameNonce, env.EncryptedName)
	if err != nil {
		return "", err
	}
	return string(name), nil
}

func unwrapCEK(env *Envelope, masterKey []byte) ([]byte, error) {
	if env == nil {
		return nil, fmt.Errorf("%w: missing envelope", common.ErrorInvalidInput)
	}

	cek, err := Open(masterKey, env.CEKWrapNonce, env.WrappedCEK)
	if err != nil {
		return nil, err
	}
	if len(cek) != KeySize {
		common.WipeByteArray(cek)
		return nil, common.ErrAuthFailure
	}
	return cek, nil
}
