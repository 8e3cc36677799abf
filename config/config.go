package config

import (
	"github.com/pitabwire/frame/config"
)

// FileSizeBytes is a file size in bytes.
type FileSizeBytes int64

// DefaultMaxFileSizeBytes defines the default file size allowed in transfers.
var DefaultMaxFileSizeBytes = FileSizeBytes(10485760)

type FileshareConfig struct {
	config.ConfigurationDefault

	StorageProvider string `envDefault:"LOCAL" env:"STORAGE_PROVIDER"`

	ProviderLocalDirectory string `envDefault:"/tmp/fileshare" env:"LOCAL_STORAGE_DIRECTORY"`

	ProviderGcsBucket string `envDefault:"" env:"GCS_BUCKET"`

	ProviderS3Bucket          string `envDefault:"" env:"S3_BUCKET"`
	ProviderS3Endpoint        string `envDefault:"" env:"S3_ENDPOINT"`
	ProviderS3Region          string `envDefault:"" env:"S3_REGION"`
	ProviderS3AccessKeySecret string `envDefault:"" env:"S3_ACCESS_KEY_SECRET"`
	ProviderS3SessionToken    string `envDefault:"" env:"S3_SESSION_TOKEN"`
	ProviderS3AccessKeyId     string `envDefault:"" env:"S3_ACCESS_KEY_ID"`

	// The maximum file size in bytes that is allowed to be stored.
	// Note: if set to 0, the size is unlimited.
	MaxFileSizeBytes FileSizeBytes `envDefault:"10485760" env:"MAX_FILE_SIZE_BYTES"`
}
