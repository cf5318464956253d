package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dmorgan81/promobot/internal/log"
	"github.com/samber/do"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
}

// WriteFile writes data to path, creating missing parent directories. An
// existing file is truncated and replaced in place.
func WriteFile(ctx context.Context, path string, data []byte) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("file")
	log.Info("writing", "file", path, "bytes", len(data))

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// FileUploader writes uploads below Dir. Metadata is not kept.
type FileUploader struct {
	Dir string
}

func NewFileUploader(i *do.Injector) (*FileUploader, error) {
	return &FileUploader{Dir: do.MustInvokeNamed[string](i, "output_dir")}, nil
}

func (u *FileUploader) Upload(ctx context.Context, params UploadParams) error {
	return WriteFile(ctx, filepath.Join(u.Dir, filepath.FromSlash(params.Name)), params.Data)
}
