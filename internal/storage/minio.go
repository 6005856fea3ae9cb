package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/profilekit/profilekit/internal/config"
)

// presignTTL is the longest lifetime S3 allows for a presigned GET.
const presignTTL = 7 * 24 * time.Hour

// MinIOStorage is a thin wrapper around the minio client used by services.
type MinIOStorage struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewMinIOStorage creates a new MinIO storage client and ensures the bucket exists.
func NewMinIOStorage(ctx context.Context, cfg config.MinIOConfig) (*MinIOStorage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStorage{client: mc, bucket: cfg.Bucket, publicBase: strings.TrimRight(cfg.PublicBaseURL, "/")}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// ignore "already exists" style errors
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// Put uploads data under key and returns where clients can fetch it.
func (s *MinIOStorage) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*Object, error) {
	if _, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return nil, fmt.Errorf("minio put %s: %w", key, err)
	}
	u, err := s.URL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Object{Key: key, URL: u, ContentType: contentType, Size: size}, nil
}

// URL is publicBase/key when a public base is configured, otherwise a presigned GET URL.
func (s *MinIOStorage) URL(ctx context.Context, key string) (string, error) {
	if s.publicBase != "" {
		return s.publicBase + "/" + key, nil
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, presignTTL, make(url.Values))
	if err != nil {
		return "", fmt.Errorf("minio presign %s: %w", key, err)
	}
	return presigned.String(), nil
}

func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// Ping reports whether the bucket is reachable.
func (s *MinIOStorage) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s missing", s.bucket)
	}
	return nil
}
