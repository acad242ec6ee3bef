package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/codebuildervaibhav/dreamwhisper/internal/config"
)

// Mirror copies a persisted artifact to remote storage and returns its URL.
type Mirror interface {
	Name() string
	Upload(ctx context.Context, name string, content []byte) (string, error)
}

// NewMirror builds the configured backend. It returns nil for "none".
func NewMirror(ctx context.Context, cfg config.MirrorConfig) (Mirror, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "gdrive":
		client, err := NewDriveClient(ctx,
			cfg.GoogleDrive.CredentialsFile,
			cfg.GoogleDrive.TokenFile,
			cfg.GoogleDrive.FolderName,
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "azblob":
		blob, err := NewBlobMirror(
			cfg.AzureBlob.ConnectionString,
			cfg.AzureBlob.AccountURL,
			cfg.AzureBlob.Container,
		)
		if err != nil {
			return nil, err
		}
		return blob, nil
	default:
		log.Printf("Unknown mirror backend %q", cfg.Backend)
		return nil, fmt.Errorf("unknown mirror backend %q", cfg.Backend)
	}
}
