// Package api declares the JSON bodies exchanged between the SecureDrive
// client and server. Byte fields are []byte so encoding/json renders them
// as standard-alphabet Base64; a malformed Base64 string fails decoding.
package api

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/cryptox"
)

// Multipart field names used by the upload endpoint.
const (
	UploadFileField = "file"
	UploadMetaField = "meta"
)

type RegisterRequest struct {
	Email            string `json:"email" binding:"required,email"`
	WrappedMasterKey []byte `json:"wrappedMasterKeyB64" binding:"required"`
	IV               []byte `json:"ivB64" binding:"required"`
	Salt             []byte `json:"saltB64" binding:"required"`
	Verifier         []byte `json:"verifierB64" binding:"required"`
}

type RegisterResponse struct {
	Email string `json:"email"`
}

type WrappedKeyRequest struct {
	Email string `json:"email" binding:"required"`
}

type WrappedKeyResponse struct {
	WrappedMasterKey []byte `json:"wrappedMasterKeyB64"`
	IV               []byte `json:"ivB64"`
	Salt             []byte `json:"saltB64"`
}

type LoginRequest struct {
	Email   string `json:"email" binding:"required"`
	AuthKey []byte `json:"authKeyB64" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// UploadMeta travels next to the blob in the multipart upload.
type UploadMeta struct {
	WrappedCEK        []byte `json:"wrappedCekB64"`
	WrapIV            []byte `json:"wrapIvB64"`
	EncryptedFileName []byte `json:"encryptedFileNameB64"`
	NameIV            []byte `json:"ivNameB64"`
}

type UploadResponse struct {
	StorageName string    `json:"storageName"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// ArtifactMeta is returned by the listing and metadata endpoints, and only
// ever to the artifact's owner.
type ArtifactMeta struct {
	StorageName       string    `json:"storageName"`
	WrappedCEK        []byte    `json:"wrappedCekB64"`
	WrapIV            []byte    `json:"wrapIvB64"`
	EncryptedFileName []byte    `json:"encryptedFileNameB64"`
	NameIV            []byte    `json:"ivNameB64"`
	Size              int64     `json:"size"`
	UploadedAt        time.Time `json:"uploadedAt"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

type PingResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Validate checks the byte lengths of an upload's key material.
func (m *UploadMeta) Validate() error {
	switch {
	case len(m.WrappedCEK) != cryptox.WrappedKeySize:
		return fmt.Errorf("%w: wrappedCek must be %d bytes", common.ErrorInvalidInput, cryptox.WrappedKeySize)
	case len(m.WrapIV) != cryptox.NonceSize:
		return fmt.Errorf("%w: wrapIv must be %d bytes", common.ErrorInvalidInput, cryptox.NonceSize)
	case len(m.NameIV) != cryptox.NonceSize:
		return fmt.Errorf("%w: ivName must be %d bytes", common.ErrorInvalidInput, cryptox.NonceSize)
	case len(m.EncryptedFileName) < cryptox.TagSize:
		return fmt.Errorf("%w: encryptedFileName is too short", common.ErrorInvalidInput)
	}
	return nil
}

// Envelope joins the metadata and the downloaded blob back into the form
// cryptox.DecryptFile expects.
func (m *ArtifactMeta) Envelope(blob []byte) *cryptox.Envelope {
	return &cryptox.Envelope{
		Ciphertext:    blob,
		WrappedCEK:    m.WrappedCEK,
		CEKWrapNonce:  m.WrapIV,
		EncryptedName: m.EncryptedFileName,
		NameNonce:     m.NameIV,
	}
}
