// Package objectstore provides the storage adapters behind the relay's and
// catalog's object ports: an S3-compatible client and a local filesystem
// store for development.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"streamz/internal/domain/stream"
)

// S3Config carries the settings for an S3-compatible endpoint. Endpoint is
// optional; when set (e.g. a Cloudflare R2 account endpoint) it overrides the
// AWS default.
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Store adapts an S3-compatible bucket to the object storage ports. The
// client is connection-pooled and safe for concurrent use.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds the shared S3 client. Static credentials are used when
// provided, otherwise the default provider chain applies.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Stat issues a HEAD against the object and returns its size and content type.
// A missing object is reported with os.ErrNotExist.
func (s *S3Store) Stat(ctx context.Context, key string) (int64, string, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, "", fmt.Errorf("head %q: %w", key, os.ErrNotExist)
		}
		return 0, "", fmt.Errorf("head %q: %w", key, err)
	}
	return aws.ToInt64(out.ContentLength), aws.ToString(out.ContentType), nil
}

// Open issues a GET, ranged when byteRange is given, and returns the body
// stream. The SDK body honors ctx cancellation, so an abandoned client
// request releases the read.
func (s *S3Store) Open(ctx context.Context, key string, byteRange *stream.ByteRange) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if byteRange != nil {
		input.Range = aws.String(fmt.Sprintf("bytes=%d-%d", byteRange.Start, byteRange.End))
	}

	out, err := s.client.GetObject(ctx, input)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("get %q: %w", key, os.ErrNotExist)
		}
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return out.Body, nil
}

// Put uploads an object, streaming body to the bucket.
func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Delete removes an object. Deleting an absent key is not an error.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}
