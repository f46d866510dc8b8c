package statestore

import (
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
)

// GCSRemote mirrors state blobs to a Google Cloud Storage bucket.
type GCSRemote struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSRemote connects to GCS using ambient credentials.
func NewGCSRemote(ctx context.Context, bucket, prefix string) (*GCSRemote, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCSRemote{client: client, bucket: bucket, prefix: prefix}, nil
}

func (g *GCSRemote) object(key string) *storage.ObjectHandle {
	return g.client.Bucket(g.bucket).Object(path.Join(g.prefix, key+".json"))
}

// Download fetches the blob for key.
func (g *GCSRemote) Download(ctx context.Context, key string) ([]byte, error) {
	r, err := g.object(key).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Upload writes the blob for key.
func (g *GCSRemote) Upload(ctx context.Context, key string, data []byte) error {
	w := g.object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Close releases the underlying client.
func (g *GCSRemote) Close() error {
	return g.client.Close()
}

var _ Remote = (*GCSRemote)(nil)
