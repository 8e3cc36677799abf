package provider

import (
	"context"

	"github.com/antinvestor/service-fileshare/config"
	"github.com/antinvestor/service-fileshare/service/storage"
	"github.com/antinvestor/service-fileshare/service/storage/provider/gcs"
	"github.com/antinvestor/service-fileshare/service/storage/provider/local"
	"github.com/antinvestor/service-fileshare/service/storage/provider/mem"
	"github.com/antinvestor/service-fileshare/service/storage/provider/s3"
)

func GetStorageProvider(ctx context.Context, cfg *config.FileshareConfig) (storage.Provider, error) {
	var provider storage.Provider
	switch cfg.StorageProvider {
	case "GCS":
		provider = gcs.NewProvider("GCS", cfg.ProviderGcsBucket)

	case "S3":
		provider = s3.NewProvider("S3", cfg.ProviderS3Bucket,
			cfg.ProviderS3Endpoint, cfg.ProviderS3Region, cfg.ProviderS3AccessKeySecret,
			cfg.ProviderS3SessionToken, cfg.ProviderS3AccessKeyId)

	case "MEM":
		provider = mem.NewProvider("MEM", "fileshare")

	default:
		provider = local.NewProvider("LOCAL", cfg.ProviderLocalDirectory)
	}

	err := provider.Setup(ctx)
	return provider, err
}
