// Package storage persists listing images in an S3-compatible object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/carsawa/carsawa-api/internal/config"
)

// StoredImage describes one uploaded image: a stable public URL and the
// object key it can later be deleted with.
type StoredImage struct {
	Key string
	URL string
}

// ImageStore is the contract with the image host: upload yields a public
// URL plus a deletable key, and delete tolerates already-removed keys.
type ImageStore interface {
	Upload(ctx context.Context, originalName, contentType string, body io.Reader, size int64) (*StoredImage, error)
	Delete(ctx context.Context, key string) error
}

// S3Store implements ImageStore against S3 or an S3-compatible server.
type S3Store struct {
	client        *s3.Client
	bucket        string
	region        string
	keyPrefix     string
	publicBaseURL string
}

// NewS3Store builds an S3-backed image store from the process configuration.
func NewS3Store(ctx context.Context, cfg config.S3) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		keyPrefix:     cfg.KeyPrefix,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload stores the image under a fresh unique key and returns its public
// URL.
func (s *S3Store) Upload(ctx context.Context, originalName, contentType string, body io.Reader, size int64) (*StoredImage, error) {
	key := s.objectKey(originalName)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	return &StoredImage{Key: key, URL: s.publicURL(key)}, nil
}

// Delete removes an image by key. Deleting a key that is already gone is
// not an error.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// objectKey builds a unique key from the upload's original name, keeping
// its extension.
func (s *S3Store) objectKey(originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	base := strings.TrimSuffix(path.Base(originalName), path.Ext(originalName))
	base = sanitizeName(base)
	return fmt.Sprintf("%s/%s-%s%s", s.keyPrefix, uuid.New(), base, ext)
}

func (s *S3Store) publicURL(key string) string {
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// sanitizeName keeps object keys URL-safe.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
