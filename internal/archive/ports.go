package archive

import (
	"context"
	"io"
)

// Client is the low-level object-storage client.
type Client interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (publicURL string, err error)
}
