package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Deven107/weather-etl-pipeline/internal/config"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

// ObjectStorage holds generated report files.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	HealthCheck(ctx context.Context) error
}

type MinioStorage struct {
	client *minio.Client
	bucket string
	logger logger.Logger
}

func NewMinioStorage(cfg config.MinioConfig, log logger.Logger) (*MinioStorage, error) {
	storageLog := log.WithField("component", "minio_storage")

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := client.ListBuckets(ctx); err != nil {
		return nil, fmt.Errorf("failed to list Minio buckets: %w", err)
	}

	storageLog.Info("Minio storage initialized successfully")
	return &MinioStorage{
		client: client,
		bucket: cfg.Bucket,
		logger: storageLog,
	}, nil
}

func (m *MinioStorage) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		m.logger.Infof("Created bucket: %s", m.bucket)
	}

	_, err = m.client.PutObject(ctx, m.bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	m.logger.Debugf("Uploaded file to bucket: %s, key: %s", m.bucket, key)
	return nil
}

func (m *MinioStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	object, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download object: %w", err)
	}

	if _, err := object.Stat(); err != nil {
		object.Close()
		return nil, fmt.Errorf("object not found: %w", err)
	}

	return object, nil
}

func (m *MinioStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}

func (m *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (m *MinioStorage) HealthCheck(ctx context.Context) error {
	_, err := m.client.ListBuckets(ctx)
	return err
}
