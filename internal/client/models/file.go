// Package models defines the client-side view of stored files.
package models

import "time"

// FileInfo is one listing row with its name already decrypted.
// NameOK is false when the name could not be opened under the session's
// Master Key; Name then holds a placeholder.
type FileInfo struct {
	StorageName string
	Name        string
	NameOK      bool
	Size        int64
	UploadedAt  time.Time
}

// DownloadedFile is a decrypted file as returned by the server.
type DownloadedFile struct {
	StorageName string
	Name        string
	Data        []byte
}
