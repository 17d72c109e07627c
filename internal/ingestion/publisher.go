package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"

	"cloud.google.com/go/storage"
)

// GCSPublisher writes JSON snapshots to a bucket.
type GCSPublisher struct {
	gcsClient *storage.Client
	gcsBucket string
	prefix    string
	logger    *slog.Logger

	// openObject returns the writer for an object key.
	openObject func(ctx context.Context, key string) io.WriteCloser
}

func NewGCSPublisher(gcsClient *storage.Client, bucket, prefix string, logger *slog.Logger) *GCSPublisher {
	p := &GCSPublisher{
		gcsClient: gcsClient,
		gcsBucket: bucket,
		prefix:    prefix,
		logger:    logger.With("component", "gcs_publisher"),
	}
	p.openObject = p.openGCSObject
	return p
}

func (p *GCSPublisher) openGCSObject(ctx context.Context, key string) io.WriteCloser {
	wc := p.gcsClient.Bucket(p.gcsBucket).Object(key).NewWriter(ctx)
	wc.ContentType = "application/json"
	wc.CacheControl = "public, max-age=300"
	return wc
}

// ObjectKey is the object name a snapshot is stored under.
func (p *GCSPublisher) ObjectKey(name string) string {
	return path.Join(p.prefix, name)
}

// Publish encodes v as JSON and uploads it, replacing any previous snapshot.
func (p *GCSPublisher) Publish(ctx context.Context, name string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", name, err)
	}

	key := p.ObjectKey(name)
	wc := p.openObject(ctx, key)
	if _, err := wc.Write(body); err != nil {
		wc.Close()
		p.logger.ErrorContext(ctx, "Failed to upload snapshot to GCS", "error", err, "gcs_object_key", key)
		return fmt.Errorf("failed to upload snapshot to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		p.logger.ErrorContext(ctx, "Failed to close GCS writer", "error", err, "gcs_object_key", key)
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	p.logger.InfoContext(ctx, "Snapshot uploaded to GCS", "gcs_object_key", key, "bytes", len(body))
	return nil
}
