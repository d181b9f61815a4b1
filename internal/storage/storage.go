package storage

import (
	"context"
	"strings"
)

// UploadContainer is the pre-agreed container every resized image is written to.
const UploadContainer = "website-uploads"

const jpegContentType = "image/jpeg"

// Service persists an object and returns the address it can be fetched from.
type Service interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// New picks the backend from the connection string. "s3://" strings select S3, everything
// else is treated as an Azure Storage connection string.
func New(ctx context.Context, connectionString string, container string) (Service, error) {
	if strings.HasPrefix(strings.TrimSpace(connectionString), s3Scheme+"://") {
		return NewS3Service(ctx, connectionString, container)
	}
	return NewAzureBlobService(connectionString, container)
}
