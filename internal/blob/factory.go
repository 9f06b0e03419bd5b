package blob

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Config selects and parameterizes a blob store backend.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open constructs the configured blob store. An empty driver defaults to the
// filesystem backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// OpenFromEnv selects a Store implementation using environment variables.
//
//	SPORELY_BLOB_DRIVER: fs|s3|memory (default fs)
//	SPORELY_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	SPORELY_BLOB_S3_BUCKET: bucket name (required for s3)
//	SPORELY_BLOB_S3_REGION: region (default us-east-1)
//	SPORELY_BLOB_S3_ENDPOINT: custom endpoint URL, for MinIO
//	SPORELY_BLOB_S3_PATH_STYLE: true|false (default false)
func OpenFromEnv(ctx context.Context) (Store, error) {
	return Open(ctx, Config{
		Driver: Driver(os.Getenv("SPORELY_BLOB_DRIVER")),
		FSRoot: os.Getenv("SPORELY_BLOB_FS_ROOT"),
		S3: S3Config{
			Bucket:    os.Getenv("SPORELY_BLOB_S3_BUCKET"),
			Region:    os.Getenv("SPORELY_BLOB_S3_REGION"),
			Endpoint:  os.Getenv("SPORELY_BLOB_S3_ENDPOINT"),
			PathStyle: strings.EqualFold(os.Getenv("SPORELY_BLOB_S3_PATH_STYLE"), "true"),
		},
	})
}
