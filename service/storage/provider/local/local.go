package local

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pitabwire/util"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
)

// Opener resolves a bucket name to an open blob bucket and a release
// function. Providers that embed ProviderLocal install their own opener
// during Setup so the shared transfer logic below talks to their backing
// store.
type Opener func(ctx context.Context, bucketName string) (*blob.Bucket, func(), error)

type ProviderLocal struct {
	name   string
	bucket string
	opener Opener
}

func (provider *ProviderLocal) Name() string {
	return provider.name
}

func (provider *ProviderLocal) Bucket() string {
	return provider.bucket
}

func (provider *ProviderLocal) SetOpener(opener Opener) {
	provider.opener = opener
}

func (provider *ProviderLocal) Setup(_ context.Context) error {
	return os.MkdirAll(provider.bucket, 0755)
}

func (provider *ProviderLocal) open(ctx context.Context, bucketName string) (*blob.Bucket, func(), error) {
	if provider.opener != nil {
		return provider.opener(ctx, bucketName)
	}

	bucket, err := blob.OpenBucket(ctx, fmt.Sprintf("file://%s", bucketName))
	if err != nil {
		return nil, nil, err
	}
	return bucket, func() { util.CloseAndLogOnError(ctx, bucket) }, nil
}

func (provider *ProviderLocal) UploadFile(ctx context.Context, bucketName string, key string, source io.Reader) (int64, error) {

	bucket, release, err := provider.open(ctx, bucketName)
	if err != nil {
		return 0, err
	}
	defer release()

	writeCtx, cancelWrite := context.WithCancel(ctx)
	defer cancelWrite()

	w, err := bucket.NewWriter(writeCtx, key, nil)
	if err != nil {
		return 0, err
	}

	written, err := w.ReadFrom(source)
	if err != nil {
		util.CloseAndLogOnError(ctx, w)
		return 0, err
	}

	err = w.Close()
	if err != nil {
		return 0, err
	}

	return written, nil
}

func (provider *ProviderLocal) DownloadFile(ctx context.Context, bucketName string, key string) (io.Reader, func(), error) {

	bucket, release, err := provider.open(ctx, bucketName)
	if err != nil {
		return nil, nil, err
	}

	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		release()
		return nil, nil, err
	}

	return r, func() {
		util.CloseAndLogOnError(ctx, r)
		release()
	}, nil
}

func (provider *ProviderLocal) DeleteFile(ctx context.Context, bucketName string, key string) error {

	bucket, release, err := provider.open(ctx, bucketName)
	if err != nil {
		return err
	}
	defer release()

	return bucket.Delete(ctx, key)
}

func NewProvider(name, bucket string) *ProviderLocal {
	return &ProviderLocal{
		name:   name,
		bucket: bucket,
	}
}
