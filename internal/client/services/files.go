package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/securedrive/internal/api"
	"github.com/dmitrijs2005/securedrive/internal/client/client"
	"github.com/dmitrijs2005/securedrive/internal/client/models"
	"github.com/dmitrijs2005/securedrive/internal/client/session"
	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/cryptox"
	"github.com/dmitrijs2005/securedrive/internal/filex"
)

const undecryptableName = "<undecryptable>"

type FileService interface {
	Upload(ctx context.Context, s *session.Session, name string, data []byte) (*models.FileInfo, error)
	List(ctx context.Context, s *session.Session) ([]*models.FileInfo, error)
	Fetch(ctx context.Context, s *session.Session, storageName string) (*models.DownloadedFile, error)
	Download(ctx context.Context, s *session.Session, storageName, dest string) (string, error)
	Delete(ctx context.Context, s *session.Session, storageName string) error
}

type fileService struct {
	client      client.Client
	downloadDir string
}

// NewFileService returns a FileService that saves downloads under
// downloadDir unless a destination is given.
func NewFileService(c client.Client, downloadDir string) FileService {
	return &fileService{client: c, downloadDir: downloadDir}
}

// Upload encrypts data and its display name under a fresh content key and
// stores the result. Only ciphertext and wrapped key material are sent.
func (f *fileService) Upload(ctx context.Context, s *session.Session, name string, data []byte) (*models.FileInfo, error) {
	token, err := activeToken(s)
	if err != nil {
		return nil, err
	}

	var env *cryptox.Envelope
	err = s.WithMasterKey(func(mk []byte) error {
		var err error
		env, err = cryptox.EncryptFile(data, mk, name)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Upload(ctx, token, &api.UploadMeta{
		WrappedCEK:        env.WrappedCEK,
		WrapIV:            env.CEKWrapNonce,
		EncryptedFileName: env.EncryptedName,
		NameIV:            env.NameNonce,
	}, env.Ciphertext)
	if err != nil {
		return nil, err
	}

	return &models.FileInfo{
		StorageName: resp.StorageName,
		Name:        name,
		NameOK:      true,
		Size:        int64(len(env.Ciphertext)),
		UploadedAt:  resp.UploadedAt,
	}, nil
}

// List returns the caller's files with their names decrypted. A row whose
// name does not open is still returned, flagged with NameOK=false.
func (f *fileService) List(ctx context.Context, s *session.Session) ([]*models.FileInfo, error) {
	token, err := activeToken(s)
	if err != nil {
		return nil, err
	}

	metas, err := f.client.List(ctx, token)
	if err != nil {
		return nil, err
	}

	out := make([]*models.FileInfo, 0, len(metas))
	err = s.WithMasterKey(func(mk []byte) error {
		for i := range metas {
			m := &metas[i]
			info := &models.FileInfo{
				StorageName: m.StorageName,
				Size:        m.Size,
				UploadedAt:  m.UploadedAt,
			}
			name, err := cryptox.DecryptFileName(m.Envelope(nil), mk)
			if err != nil {
				info.Name = undecryptableName
			} else {
				info.Name, info.NameOK = name, true
			}
			out = append(out, info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Fetch downloads and decrypts one file. Any tampering with the blob or its
// key material fails with common.ErrAuthFailure and yields no plaintext.
func (f *fileService) Fetch(ctx context.Context, s *session.Session, storageName string) (*models.DownloadedFile, error) {
	token, err := activeToken(s)
	if err != nil {
		return nil, err
	}

	meta, err := f.client.Meta(ctx, token, storageName)
	if err != nil {
		return nil, err
	}
	blob, err := f.client.Download(ctx, token, storageName)
	if err != nil {
		return nil, err
	}

	out := &models.DownloadedFile{StorageName: storageName}
	err = s.WithMasterKey(func(mk []byte) error {
		var err error
		out.Data, out.Name, err = cryptox.DecryptFile(meta.Envelope(blob), mk)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Download fetches a file and writes it to dest, or to the download
// directory under its decrypted name when dest is empty. It returns the
// path written.
func (f *fileService) Download(ctx context.Context, s *session.Session, storageName, dest string) (string, error) {
	file, err := f.Fetch(ctx, s, storageName)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(file.Data)

	path := dest
	if path == "" {
		dir, err := filex.EnsureSubdDir(f.downloadDir)
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, safeFileName(file.Name, storageName))
	} else if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, safeFileName(file.Name, storageName))
	}

	if err := filex.WriteFileAtomic(path, file.Data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fileService) Delete(ctx context.Context, s *session.Session, storageName string) error {
	token, err := activeToken(s)
	if err != nil {
		return err
	}
	return f.client.Delete(ctx, token, storageName)
}

func activeToken(s *session.Session) (string, error) {
	if !s.Active() {
		return "", fmt.Errorf("%w: not logged in", common.ErrorUnauthorized)
	}
	return s.Token(), nil
}

// safeFileName reduces a decrypted display name to a single path element.
// Names that cannot be used as is fall back to the storage name.
func safeFileName(name, fallback string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == ".." || name == "/" || name == "" || strings.ContainsRune(name, 0) {
		return fallback
	}
	return name
}
