package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abduss/mediadrop/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultObjectStoreTimeout = 5 * time.Second

// NewMinIOClient establishes a MinIO client using the provided configuration.
func NewMinIOClient(cfg config.MinIOConfig) (*minio.Client, error) {
	endpoint := cfg.Endpoint
	if !strings.Contains(endpoint, ":") {
		endpoint = fmt.Sprintf("%s:9000", endpoint)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return client, nil
}

// PrepareMediaBucket creates the bucket if missing. When the disk hands out
// unsigned public URLs, objects under namespace are made anonymously readable.
func PrepareMediaBucket(ctx context.Context, client *minio.Client, cfg config.MinIOConfig, namespace string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultObjectStoreTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	if cfg.PublicURL == "" {
		return nil
	}
	if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket, namespace)); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}
	return nil
}

func publicReadPolicy(bucket, namespace string) string {
	resource := fmt.Sprintf("arn:aws:s3:::%s/%s/*", bucket, strings.Trim(namespace, "/"))
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":[%q]}]}`, resource)
}
