package mem

import (
	"context"
	"sync"

	"github.com/antinvestor/service-fileshare/service/storage/provider/local"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
)

// ProviderMem keeps blobs in process memory. Used by tests; a mem bucket
// must be held open for its contents to survive between operations, so
// buckets are cached per name.
type ProviderMem struct {
	*local.ProviderLocal

	mu      sync.Mutex
	buckets map[string]*blob.Bucket
}

func (provider *ProviderMem) Setup(_ context.Context) error {
	provider.SetOpener(func(_ context.Context, bucketName string) (*blob.Bucket, func(), error) {
		provider.mu.Lock()
		defer provider.mu.Unlock()

		bucket, ok := provider.buckets[bucketName]
		if !ok {
			bucket = memblob.OpenBucket(nil)
			provider.buckets[bucketName] = bucket
		}
		// The cached bucket stays open for the provider's lifetime.
		return bucket, func() {}, nil
	})
	return nil
}

func NewProvider(name, bucket string) *ProviderMem {
	return &ProviderMem{
		ProviderLocal: local.NewProvider(name, bucket),
		buckets:       map[string]*blob.Bucket{},
	}
}
