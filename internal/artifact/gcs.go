package artifact

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSWriter publishes the artifact as a Cloud Storage object. The object only
// becomes visible when the upload is closed successfully.
type GCSWriter struct {
	client     *storage.Client
	bucketName string
	objectName string
}

// NewGCSWriter creates a new Cloud Storage writer
func NewGCSWriter(ctx context.Context, bucketName, objectName string, opts ...option.ClientOption) (*GCSWriter, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &GCSWriter{
		client:     client,
		bucketName: bucketName,
		objectName: objectName,
	}, nil
}

func (g *GCSWriter) Location() string {
	return fmt.Sprintf("gs://%s/%s", g.bucketName, g.objectName)
}

// Write uploads data, replacing any previous object
func (g *GCSWriter) Write(ctx context.Context, data []byte) error {
	if err := g.upload(ctx, data); err != nil {
		return &PersistenceError{Location: g.Location(), Cause: err}
	}
	return nil
}

func (g *GCSWriter) upload(ctx context.Context, data []byte) error {
	// Cancelling the upload context aborts the object instead of committing it
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	obj := g.client.Bucket(g.bucketName).Object(g.objectName)
	writer := obj.NewWriter(ctx)
	writer.ContentType = "text/html; charset=utf-8"
	writer.CacheControl = "no-cache, max-age=0"

	if _, err := writer.Write(data); err != nil {
		cancel()
		writer.Close()
		return fmt.Errorf("writing object data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing object writer: %w", err)
	}

	return nil
}

// Close closes the Cloud Storage client
func (g *GCSWriter) Close() error {
	return g.client.Close()
}
