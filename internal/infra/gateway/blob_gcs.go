package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"google.golang.org/api/option"
)

// BlobStoreGCS uploads portrait images to a Google Cloud Storage bucket and
// hands back stable public URLs.
type BlobStoreGCS struct {
	client *storage.Client
	bucket *storage.BucketHandle

	bucketName string
	prefix     string
}

func NewBlobStoreGCS(ctx context.Context, bucketName, prefix, credentialsFile string) (*BlobStoreGCS, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("gcs blob: bucket not set")
	}

	var clientOpts []option.ClientOption
	if credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "gcs blob: client creation failed")
	}

	if prefix == "" {
		prefix = "profiles"
	}

	return &BlobStoreGCS{
		client:     client,
		bucket:     client.Bucket(bucketName),
		bucketName: bucketName,
		prefix:     strings.Trim(prefix, "/"),
	}, nil
}

func (b *BlobStoreGCS) Close() error {
	if b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	return err
}

// Upload writes the image under a sanitized, collision-free object name and
// returns the public URL. Non-ASCII suggested names collapse to underscores.
func (b *BlobStoreGCS) Upload(ctx context.Context, data []byte, suggestedName, mimeType string) (string, error) {
	ctx, span := tracer.Start(ctx, "BlobStoreGCS.Upload")
	defer span.End()

	if len(data) == 0 {
		return "", fmt.Errorf("gcs blob: empty payload")
	}

	object := fmt.Sprintf("%s/%s_%d_%s%s",
		b.prefix,
		sanitizeObjectName(suggestedName),
		time.Now().UnixMilli(),
		ksuid.New().String(),
		extensionFor(mimeType),
	)

	w := b.bucket.Object(object).NewWriter(ctx)
	w.ContentType = mimeType
	w.CacheControl = "public, max-age=3600"

	if _, err := w.Write(data); err != nil {
		w.Close()
		span.RecordError(err)
		return "", errors.Wrap(err, "gcs blob: write failed")
	}
	if err := w.Close(); err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "gcs blob: close failed")
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucketName, object), nil
}

// sanitizeObjectName keeps lowercase ASCII letters and digits and replaces
// everything else, so non-ASCII display names still produce safe paths.
func sanitizeObjectName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "portrait"
	}
	return sb.String()
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
