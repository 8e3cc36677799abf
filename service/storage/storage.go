package storage

import (
	"context"
	"io"
)

// Provider moves file bytes in and out of a blob store. It is the external
// storage collaborator behind the access gateway; authorization never
// happens here.
type Provider interface {
	Name() string
	Bucket() string

	Setup(ctx context.Context) error

	UploadFile(ctx context.Context, bucketName string, key string, source io.Reader) (int64, error)
	DownloadFile(ctx context.Context, bucketName string, key string) (io.Reader, func(), error)
	DeleteFile(ctx context.Context, bucketName string, key string) error
}
