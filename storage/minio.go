package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"packvault/config"
	"packvault/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var minioClient *minio.Client

// InitMinio initializes the MinIO client and makes sure the bucket
// exists.
func InitMinio(cfg *config.Config) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return fmt.Errorf("failed to create bucket %q: %w", cfg.MinioBucket, err)
		}
		logger.Info("Created MinIO bucket", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	logger.Info("MinIO client initialized", logger.String("endpoint", cfg.MinioEndpoint))
	return nil
}

// GetMinioClient returns the MinIO client instance.
func GetMinioClient() *minio.Client {
	return minioClient
}

// ObjectStore wraps the MinIO client behind the two operations the
// publishing pipeline needs: put bytes into a folder, remove by URL.
type ObjectStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	timeout time.Duration
}

// NewObjectStore creates an object store over the shared MinIO client.
func NewObjectStore(cfg *config.Config) *ObjectStore {
	return &ObjectStore{
		client:  minioClient,
		bucket:  cfg.MinioBucket,
		baseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		timeout: 2 * time.Minute,
	}
}

// Put uploads the object under folder/name and returns the serve URL.
// Nothing is written on failure.
func (s *ObjectStore) Put(ctx context.Context, r io.Reader, size int64, contentType, folder, name string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("MinIO client not initialized")
	}

	objectPath := folder + "/" + name

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, s.bucket, objectPath, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}

	return s.baseURL + "/" + objectPath, nil
}

// Remove deletes the object behind a previously returned URL. Errors
// are returned so the caller can log them; removal failures are never
// escalated past logging.
func (s *ObjectStore) Remove(ctx context.Context, url string) error {
	if s.client == nil {
		return fmt.Errorf("MinIO client not initialized")
	}

	objectPath := strings.TrimPrefix(url, s.baseURL+"/")

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.RemoveObject(ctx, s.bucket, objectPath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", objectPath, err)
	}
	return nil
}

// Get opens the object behind a URL for streaming to a response.
func (s *ObjectStore) Get(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	if s.client == nil {
		return nil, fmt.Errorf("MinIO client not initialized")
	}

	object, err := s.client.GetObject(ctx, s.bucket, objectPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", objectPath, err)
	}
	return object, nil
}
