package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobMirror mirrors artifacts into an Azure Blob Storage container
type BlobMirror struct {
	client    *azblob.Client
	container string
	now       func() time.Time
}

// NewBlobMirror authenticates with a connection string when one is given,
// otherwise with the default Azure credential chain against accountURL.
func NewBlobMirror(connectionString, accountURL, container string) (*BlobMirror, error) {
	if container == "" {
		return nil, errors.New("azure blob container is required")
	}

	var (
		client *azblob.Client
		err    error
	)
	switch {
	case connectionString != "":
		client, err = azblob.NewClientFromConnectionString(connectionString, nil)
	case accountURL != "":
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("creating azure credential: %w", credErr)
		}
		client, err = azblob.NewClient(accountURL, cred, nil)
	default:
		return nil, errors.New("azure blob mirror needs a connection string or account URL")
	}
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}

	return &BlobMirror{client: client, container: container, now: time.Now}, nil
}

// Name identifies the backend in logs
func (bm *BlobMirror) Name() string {
	return "azblob"
}

// Upload stores content at YYYY/MM/DD/name and returns the blob URL
func (bm *BlobMirror) Upload(ctx context.Context, name string, content []byte) (string, error) {
	blobName := bm.now().Format("2006/01/02") + "/" + name

	if _, err := bm.client.UploadBuffer(ctx, bm.container, blobName, content, nil); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", blobName, err)
	}

	return blobURL(bm.client.URL(), bm.container, blobName), nil
}

func blobURL(serviceURL, container, blobName string) string {
	segments := strings.Split(blobName, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimSuffix(serviceURL, "/") + "/" + container + "/" + strings.Join(segments, "/")
}
