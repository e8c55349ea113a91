package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored object: the key it was written under,
// the provider's location for it and the returned ETag.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader abstracts the object store holding tournament logos.
// Services treat a nil uploader as uploads being disabled.
type FileUploader interface {
	// Upload stores the reader's content under key, replacing any
	// object already there.
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// GetPublicURL builds the externally reachable URL for a stored
	// key, or "" when no public base is configured.
	GetPublicURL(key string) string
}
