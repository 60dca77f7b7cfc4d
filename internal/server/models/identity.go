// Package models defines the records persisted by the SecureDrive server.
// The server only ever stores wrapped keys and ciphertext.
package models

import "time"

// Identity is a registered user. It is created once and never mutated.
type Identity struct {
	Email              string
	WrappedMasterKey   []byte
	MasterKeyWrapNonce []byte
	KDFSalt            []byte
	// AuthVerifier is SHA-256 of the login proof derived from the Master Key.
	AuthVerifier []byte
	CreatedAt    time.Time
}
