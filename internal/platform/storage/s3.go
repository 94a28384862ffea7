package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/common/metrics"
)

// S3Config configures the S3 file storage
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
	UsePathStyle  bool
	AccessKey     string
	SecretKey     string
}

// S3Storage implements FileStorage on S3 or an S3-compatible service.
type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
	breaker *gobreaker.CircuitBreaker
}

// NewS3Storage creates an S3 file storage
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Storage(client, cfg), nil
}

func newS3Storage(client *s3.Client, cfg S3Config) *S3Storage {
	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:          "file-storage",
			MaxRequests:   1,
			Interval:      time.Minute,
			Timeout:       30 * time.Second,
			OnStateChange: metrics.OnBreakerStateChange,
		}),
	}
}

// Upload stores body under {folder}/{kind}/{uuid}{ext} and returns its public URL.
func (s *S3Storage) Upload(ctx context.Context, body io.Reader, size int64, folder string, kind Kind, contentType string) (StoredFile, error) {
	key := objectKey(folder, kind, contentType)

	_, err := s.breaker.Execute(func() (any, error) {
		return s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          body,
			ContentLength: aws.Int64(size),
			ContentType:   aws.String(contentType),
		})
	})
	if err != nil {
		return StoredFile{}, wrapBreakerError("upload", err)
	}

	return StoredFile{URL: s.baseURL + "/" + key, StorageID: key}, nil
}

// Delete removes a stored file. Deleting a missing key succeeds.
func (s *S3Storage) Delete(ctx context.Context, storageID string, kind Kind) error {
	if storageID == "" {
		return nil
	}
	_, err := s.breaker.Execute(func() (any, error) {
		return s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(storageID),
		})
	})
	if err != nil {
		return wrapBreakerError("delete", err)
	}
	return nil
}

func wrapBreakerError(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	return fmt.Errorf("failed to %s object: %w", op, err)
}

func objectKey(folder string, kind Kind, contentType string) string {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "" {
		folder = "uploads"
	}
	return path.Join(folder, string(kind), uuid.NewString()+extension(contentType))
}

func extension(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "application/pdf":
		return ".pdf"
	}
	return ""
}
