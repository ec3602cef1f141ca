// internal/service/file_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-quickstart/internal/s3"

	"go.uber.org/zap"
)

const (
	FilesFolder       = "uploads"
	MaxFilesPerUpload = 10
	DefaultURLTTL     = time.Hour
	maxURLTTL         = 7 * 24 * time.Hour
)

// FileStore is the bulk side of the object store. *s3.Uploader satisfies it.
type FileStore interface {
	UploadMany(ctx context.Context, folder string, files []s3.File) ([]s3.Object, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	DeleteMany(ctx context.Context, keys []string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// FileService backs the generic /files endpoints.
type FileService struct {
	store FileStore
	log   *zap.Logger
}

func NewFileService(store FileStore, log *zap.Logger) *FileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileService{store: store, log: log}
}

// Upload stores every file under FilesFolder.
func (s *FileService) Upload(ctx context.Context, files []Upload) ([]s3.Object, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", ErrValidation)
	}
	if len(files) > MaxFilesPerUpload {
		return nil, fmt.Errorf("%w: at most %d files per upload", ErrValidation, MaxFilesPerUpload)
	}
	in := make([]s3.File, len(files))
	for i, f := range files {
		in[i] = s3.File{Filename: f.Filename, ContentType: f.ContentType, Body: f.Body}
	}
	objs, err := s.store.UploadMany(ctx, FilesFolder, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("files uploaded", zap.Int("count", len(objs)))
	return objs, nil
}

// URL returns a presigned download link. A zero ttl means DefaultURLTTL.
func (s *FileService) URL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.store == nil {
		return "", ErrStorageDisabled
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: key is required", ErrValidation)
	}
	if ttl < 0 || ttl > maxURLTTL {
		return "", fmt.Errorf("%w: expires must be between 1 and %d seconds", ErrValidation, int(maxURLTTL.Seconds()))
	}
	if ttl == 0 {
		ttl = DefaultURLTTL
	}
	url, err := s.store.PresignGet(ctx, key, ttl)
	if err != nil {
		if errors.Is(err, s3.ErrNotConfigured) {
			return "", ErrStorageDisabled
		}
		return "", err
	}
	return url, nil
}

// List returns the object keys under prefix. An empty prefix lists the whole bucket.
func (s *FileService) List(ctx context.Context, prefix string) ([]string, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	keys, err := s.store.List(ctx, strings.TrimSpace(prefix))
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Delete removes keys in one batch. Blank keys are dropped.
func (s *FileService) Delete(ctx context.Context, keys []string) (int, error) {
	if s.store == nil {
		return 0, ErrStorageDisabled
	}
	clean := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			clean = append(clean, k)
		}
	}
	if len(clean) == 0 {
		return 0, fmt.Errorf("%w: keys are required", ErrValidation)
	}
	if err := s.store.DeleteMany(ctx, clean); err != nil {
		return 0, err
	}
	s.log.Info("files deleted", zap.Int("count", len(clean)))
	return len(clean), nil
}
