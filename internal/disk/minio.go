package disk

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

type objectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
}

// MinIODisk stores objects in a single S3-compatible bucket.
type MinIODisk struct {
	client     objectClient
	bucket     string
	publicURL  string
	presignTTL time.Duration
}

var _ Disk = (*MinIODisk)(nil)

// NewMinIODisk wraps a client. When publicURL is empty, URL hands out presigned GET links.
func NewMinIODisk(client objectClient, bucket, publicURL string, presignTTL time.Duration) *MinIODisk {
	if presignTTL <= 0 {
		presignTTL = 24 * time.Hour
	}
	return &MinIODisk{
		client:     client,
		bucket:     bucket,
		publicURL:  strings.TrimRight(publicURL, "/"),
		presignTTL: presignTTL,
	}
}

func (d *MinIODisk) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	info, err := d.client.PutObject(ctx, d.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	if size >= 0 && info.Size != size {
		return fmt.Errorf("put object: stored %d of %d bytes", info.Size, size)
	}
	return nil
}

// Open stats the object first so a missing key surfaces here instead of on first read.
func (d *MinIODisk) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if _, err := d.client.StatObject(ctx, d.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}
	obj, err := d.client.GetObject(ctx, d.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return obj, nil
}

func (d *MinIODisk) URL(ctx context.Context, key string) (string, error) {
	if d.publicURL != "" {
		escaped := (&url.URL{Path: key}).EscapedPath()
		return fmt.Sprintf("%s/%s/%s", d.publicURL, d.bucket, strings.TrimLeft(escaped, "/")), nil
	}
	u, err := d.client.PresignedGetObject(ctx, d.bucket, key, d.presignTTL, make(url.Values))
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return u.String(), nil
}

func (d *MinIODisk) Ping(ctx context.Context) error {
	exists, err := d.client.BucketExists(ctx, d.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", d.bucket)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
