package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader — хранилище бинарных файлов (фото пилотов, постеры гонок).
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// GetPublicURL возвращает публичный URL объекта либо пустую строку,
	// если публичный доступ не настроен.
	GetPublicURL(key string) string
}
