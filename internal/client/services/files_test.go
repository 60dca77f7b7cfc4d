package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/securedrive/internal/client/session"
	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New("alice@example.com", "tok", cryptox.NewKey())
	t.Cleanup(s.Close)
	return s
}

func TestFileService_UploadListFetch(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	svc := NewFileService(fc, t.TempDir())
	s := newSession(t)

	info, err := svc.Upload(ctx, s, "notes.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", info.Name)
	assert.Equal(t, int64(cryptox.NonceSize+len("hello")+cryptox.TagSize), info.Size)

	assert.NotContains(t, string(fc.blobs[info.StorageName]), "hello")
	assert.NotContains(t, string(fc.uploads[info.StorageName].EncryptedFileName), "notes.txt")

	list, err := svc.List(ctx, s)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "notes.txt", list[0].Name)
	assert.True(t, list[0].NameOK)

	file, err := svc.Fetch(ctx, s, info.StorageName)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), file.Data)
	assert.Equal(t, "notes.txt", file.Name)
}

func TestFileService_ListFlagsForeignNames(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	svc := NewFileService(fc, t.TempDir())

	_, err := svc.Upload(ctx, newSession(t), "theirs.txt", []byte("x"))
	require.NoError(t, err)

	list, err := svc.List(ctx, newSession(t))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].NameOK)
	assert.Equal(t, undecryptableName, list[0].Name)
}

func TestFileService_TamperedBlobFailsClosed(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	svc := NewFileService(fc, t.TempDir())
	s := newSession(t)

	info, err := svc.Upload(ctx, s, "a.bin", []byte("payload"))
	require.NoError(t, err)

	fc.blobs[info.StorageName][cryptox.NonceSize] ^= 0x01

	file, err := svc.Fetch(ctx, s, info.StorageName)
	require.ErrorIs(t, err, common.ErrAuthFailure)
	assert.Nil(t, file)
}

func TestFileService_Download(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	dlDir := filepath.Join(t.TempDir(), "dl")
	svc := NewFileService(fc, dlDir)
	s := newSession(t)

	info, err := svc.Upload(ctx, s, "report.pdf", []byte("%PDF"))
	require.NoError(t, err)

	t.Run("default directory uses decrypted name", func(t *testing.T) {
		path, err := svc.Download(ctx, s, info.StorageName, "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dlDir, "report.pdf"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF"), data)
	})

	t.Run("explicit file destination", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "copy.pdf")
		path, err := svc.Download(ctx, s, info.StorageName, dest)
		require.NoError(t, err)
		assert.Equal(t, dest, path)
	})

	t.Run("existing directory destination", func(t *testing.T) {
		dir := t.TempDir()
		path, err := svc.Download(ctx, s, info.StorageName, dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "report.pdf"), path)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := svc.Download(ctx, s, "nope", "")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestFileService_Delete(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	svc := NewFileService(fc, t.TempDir())
	s := newSession(t)

	info, err := svc.Upload(ctx, s, "x", []byte("y"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, s, info.StorageName))
	require.ErrorIs(t, svc.Delete(ctx, s, info.StorageName), common.ErrorNotFound)
}

func TestFileService_RequiresActiveSession(t *testing.T) {
	ctx := context.Background()
	svc := NewFileService(newFakeClient(), t.TempDir())

	s := session.New("a@b.c", "tok", cryptox.NewKey())
	s.Close()

	_, err := svc.Upload(ctx, s, "a", []byte("b"))
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = svc.List(ctx, nil)
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = svc.Fetch(ctx, s, "n")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	require.ErrorIs(t, svc.Delete(ctx, s, "n"), common.ErrorUnauthorized)
}

func TestSafeFileName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"notes.txt", "notes.txt"},
		{"../../etc/passwd", "passwd"},
		{`..\..\boot.ini`, "boot.ini"},
		{"dir/", "dir"},
		{"", "fallback"},
		{"..", "fallback"},
		{"/", "fallback"},
		{"a\x00b", "fallback"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeFileName(tt.in, "fallback"), tt.in)
	}
}
