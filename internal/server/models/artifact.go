package models

import "time"

// Artifact is the metadata of one uploaded file. The ciphertext blob lives
// in the blob store under StorageName. Owner never changes after creation.
type Artifact struct {
	StorageName   string
	Owner         string
	WrappedCEK    []byte
	CEKWrapNonce  []byte
	EncryptedName []byte
	NameNonce     []byte
	Size          int64
	UploadedAt    time.Time
}

// Clone returns a deep copy so in-memory stores never hand out shared slices.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	c := *a
	c.WrappedCEK = append([]byte(nil), a.WrappedCEK...)
	c.CEKWrapNonce = append([]byte(nil), a.CEKWrapNonce...)
	c.EncryptedName = append([]byte(nil), a.EncryptedName...)
	c.NameNonce = append([]byte(nil), a.NameNonce...)
	return &c
}
