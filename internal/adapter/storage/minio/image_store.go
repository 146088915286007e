package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/config"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/storage"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Object key layout inside the bucket. The resize worker writes under
// processedPrefix; this service only reads there.
const (
	tempPrefix      = "temp/"
	savedPrefix     = "saved/"
	processedPrefix = "processed/"
)

type ImageStore struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

func NewImageStore(cfg *config.MinIOConfig, logger *zap.Logger) (*ImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	err = client.MakeBucket(context.Background(), cfg.Bucket, minio.MakeBucketOptions{})
	if err != nil {
		exists, errBucketExists := client.BucketExists(context.Background(), cfg.Bucket)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", cfg.Bucket, err, errBucketExists)
		}
	}
	logger.Info("MinIO image store initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
	)

	return &ImageStore{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

func tempKey(name string) string {
	return tempPrefix + name
}

func savedKey(name string) string {
	return savedPrefix + name
}

func processedKey(name string, size int) string {
	return fmt.Sprintf("%s%d/%s", processedPrefix, size, name)
}

func (s *ImageStore) Stage(ctx context.Context, name, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, tempKey(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to stage object %s: %w", tempKey(name), err)
	}
	s.logger.Debug("Staged image blob",
		zap.String("key", tempKey(name)),
		zap.Int("size_bytes", len(data)),
	)
	return nil
}

// Promote moves the blob from temp/ to saved/ under the same name. MinIO has
// no rename, so this is a server-side copy followed by a remove of the
// source.
func (s *ImageStore) Promote(ctx context.Context, name string) error {
	src := minio.CopySrcOptions{Bucket: s.bucket, Object: tempKey(name)}
	dst := minio.CopyDestOptions{Bucket: s.bucket, Object: savedKey(name)}

	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return fmt.Errorf("failed to copy object %s to %s: %w", tempKey(name), savedKey(name), err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, tempKey(name), minio.RemoveObjectOptions{}); err != nil {
		// The saved copy exists; a leftover temp blob is a cost problem,
		// not a correctness one.
		s.logger.Warn("Promoted image but failed to remove temp blob",
			zap.Error(err),
			zap.String("key", tempKey(name)),
		)
	}
	return nil
}

func (s *ImageStore) Discard(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, tempKey(name), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to discard object %s: %w", tempKey(name), err)
	}
	return nil
}

func (s *ImageStore) GetVariant(ctx context.Context, name string, size int) (io.ReadCloser, string, error) {
	key := processedKey(name, size)

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, "", storage.ErrObjectNotFound
		}
		return nil, "", fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return obj, info.ContentType, nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}
