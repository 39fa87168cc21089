package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

const publicHost = "https://storage.googleapis.com/"

// allowedImageTypes lists the content types accepted for profile images.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// Uploader stores user images and returns their public URLs.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, urlOrKey string) error
}

// CheckContentType rejects anything outside the image allow-list.
func CheckContentType(contentType string) error {
	if !allowedImageTypes[strings.ToLower(contentType)] {
		return domain.ErrUnsupportedFileType
	}
	return nil
}

// ObjectKey builds the storage key uploads/YYYY/MM/DD/<uuid>-<base name>.
func ObjectKey(now time.Time, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "upload"
	}
	return fmt.Sprintf("uploads/%s/%s-%s", now.Format("2006/01/02"), uuid.NewString(), base)
}

// GCS is an Uploader backed by a Google Cloud Storage bucket. The client is
// created once at startup and shared.
type GCS struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

// NewGCS creates a storage client for bucket. credentialsJSON may be empty,
// in which case Application Default Credentials are used.
func NewGCS(ctx context.Context, bucket, credentialsJSON string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewGCS: create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, now: time.Now}, nil
}

// Close releases the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// URL returns the public URL of key.
func (g *GCS) URL(key string) string {
	return publicHost + g.bucket + "/" + key
}

// KeyFromURL extracts the object key from a public URL of this bucket. Values
// that are not URLs are returned unchanged.
func (g *GCS) KeyFromURL(u string) string {
	return strings.TrimPrefix(u, publicHost+g.bucket+"/")
}

// Upload implements Uploader.
func (g *GCS) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if err := CheckContentType(contentType); err != nil {
		return "", err
	}

	key := ObjectKey(g.now(), filename)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Upload: copy to GCS writer: %w", err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Upload: finalize upload: %w", err)
	}

	return g.URL(key), nil
}

// Delete implements Uploader. A missing object is not an error.
func (g *GCS) Delete(ctx context.Context, urlOrKey string) error {
	key := g.KeyFromURL(urlOrKey)
	if key == "" {
		return nil
	}

	err := g.client.Bucket(g.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("Delete: %s: %w", key, err)
	}
	return nil
}

// Disabled is the Uploader used when no bucket is configured.
type Disabled struct{}

// Upload implements Uploader by refusing every file.
func (Disabled) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	return "", domain.ErrUploadsDisabled
}

// Delete implements Uploader as a no-op.
func (Disabled) Delete(ctx context.Context, urlOrKey string) error {
	return nil
}

var (
	_ Uploader = (*GCS)(nil)
	_ Uploader = Disabled{}
)
