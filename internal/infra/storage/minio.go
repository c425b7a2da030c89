package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bryanwahyu/safeweb/internal/domain/history"
)

// MinioSlot keeps the history blob as a single object in a bucket.
type MinioSlot struct {
	client     *minio.Client
	bucketName string
	key        string
}

// NewMinioSlot connects to MinIO (or any S3 endpoint) and makes sure the bucket exists.
func NewMinioSlot(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*MinioSlot, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &MinioSlot{client: cli, bucketName: bucket, key: history.Key + ".json"}, nil
}

func (s *MinioSlot) Read(ctx context.Context) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, history.ErrSlotEmpty
		}
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	return data, nil
}

func (s *MinioSlot) Write(ctx context.Context, value []byte) error {
	_, err := s.client.PutObject(ctx, s.bucketName, s.key, bytes.NewReader(value), int64(len(value)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put %s: %w", s.key, err)
	}
	return nil
}

// Check pings the bucket; used by the health endpoint.
func (s *MinioSlot) Check(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}
