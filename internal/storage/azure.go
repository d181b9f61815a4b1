package storage

import (
	"context"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	predictErrors "github.com/mahirjain10/search-term-predictor/internal/errors"
)

// azureClientOptions turns off the pipeline's retry policy: an upload is attempted once.
var azureClientOptions = &azblob.ClientOptions{
	ClientOptions: azcore.ClientOptions{
		Retry: policy.RetryOptions{MaxRetries: -1},
	},
}

type AzureBlobService struct {
	client    *azblob.Client
	container string
}

// NewAzureBlobService parses the connection string eagerly so a missing or malformed
// setting is reported at startup instead of on the first upload.
func NewAzureBlobService(connectionString string, container string) (*AzureBlobService, error) {
	if strings.TrimSpace(connectionString) == "" {
		return nil, predictErrors.Wrap(predictErrors.ErrConfiguration, predictErrors.MissingConnectionStringMsg, nil)
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, azureClientOptions)
	if err != nil {
		return nil, predictErrors.Wrap(predictErrors.ErrConfiguration, predictErrors.MissingConnectionStringMsg, err)
	}

	return &AzureBlobService{client: client, container: container}, nil
}

func (service *AzureBlobService) Upload(ctx context.Context, name string, data []byte) (string, error) {
	contentType := jpegContentType
	_, err := service.client.UploadBuffer(ctx, service.container, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", predictErrors.Wrap(predictErrors.ErrStorage, "failed to upload blob "+name, err)
	}

	return service.ObjectURL(name), nil
}

// ObjectURL is the absolute address of the named blob inside the configured container.
func (service *AzureBlobService) ObjectURL(name string) string {
	return service.client.ServiceClient().NewContainerClient(service.container).NewBlobClient(name).URL()
}
