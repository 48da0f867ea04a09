package slips

import (
	"context"
	"fmt"
	"io"

	"github.com/fjod/storefront/internal/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type MinIO struct {
	client objectPutter
	bucket string
}

// NewMinIO connects and creates the bucket when it does not exist yet.
func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinIO{client: client, bucket: cfg.Bucket}, nil
}

func (m *MinIO) Put(ctx context.Context, sessionID, fileName, contentType string, r io.Reader, size int64) (domain.SlipRef, error) {
	if err := Check(fileName, contentType, size); err != nil {
		return domain.SlipRef{}, err
	}

	key := objectKey(sessionID, fileName)
	info, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-name": fileName,
		},
	})
	if err != nil {
		return domain.SlipRef{}, fmt.Errorf("failed to upload slip: %w", err)
	}

	return domain.SlipRef{
		Key:         info.Key,
		FileName:    fileName,
		ContentType: contentType,
		Size:        info.Size,
	}, nil
}
