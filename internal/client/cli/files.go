package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/securedrive/internal/common"
)

// Upload encrypts the file at path and stores it under its base name.
func (a *App) Upload(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(data)

	info, err := a.fileService.Upload(ctx, a.currentSession(), filepath.Base(path), data)
	if err != nil {
		return err
	}

	printlnFn(successColor(fmt.Sprintf("Uploaded %s as %s", info.Name, info.StorageName)))
	return nil
}

func (a *App) List(ctx context.Context) error {
	files, err := a.fileService.List(ctx, a.currentSession())
	if err != nil {
		return err
	}

	if len(files) == 0 {
		printlnFn(dimColor("No files"))
		return nil
	}

	printlnFn(headerColor(fmt.Sprintf("%-32s  %10s  %-20s  %s", "STORAGE NAME", "SIZE", "UPLOADED", "NAME")))
	for _, f := range files {
		name := f.Name
		if !f.NameOK {
			name = dimColor(name)
		}
		printlnFn(fmt.Sprintf("%-32s  %10d  %-20s  %s", f.StorageName, f.Size, f.UploadedAt.Local().Format("2006-01-02 15:04:05"), name))
	}
	return nil
}

// Download decrypts a stored file to dest, or into the download directory
// under its original name.
func (a *App) Download(ctx context.Context, name, dest string) error {
	path, err := a.fileService.Download(ctx, a.currentSession(), name, dest)
	if err != nil {
		return err
	}
	printlnFn(successColor("Saved to " + path))
	return nil
}

func (a *App) Delete(ctx context.Context, name string) error {
	if err := a.fileService.Delete(ctx, a.currentSession(), name); err != nil {
		return err
	}
	printlnFn(successColor("Deleted " + name))
	return nil
}
