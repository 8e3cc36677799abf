package gcs

import (
	"context"

	"github.com/antinvestor/service-fileshare/service/storage/provider/local"
	"github.com/pitabwire/util"
	"gocloud.dev/blob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/gcp"
)

type ProviderGCS struct {
	*local.ProviderLocal
	client *gcp.HTTPClient
}

func (provider *ProviderGCS) Setup(ctx context.Context) error {

	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return err
	}

	provider.client, err = gcp.NewHTTPClient(
		gcp.DefaultTransport(),
		gcp.CredentialsTokenSource(creds))
	if err != nil {
		return err
	}

	provider.SetOpener(func(ctx context.Context, bucketName string) (*blob.Bucket, func(), error) {
		bucket, err := gcsblob.OpenBucket(ctx, provider.client, bucketName, nil)
		if err != nil {
			return nil, nil, err
		}
		return bucket, func() { util.CloseAndLogOnError(ctx, bucket) }, nil
	})

	return nil
}

func NewProvider(name, bucket string) *ProviderGCS {
	return &ProviderGCS{
		ProviderLocal: local.NewProvider(name, bucket),
	}
}
