package minioctrl

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	DefaultSourceBucket = "faq-sources"
)

// SourceService archives the raw uploaded artifacts, keyed by the document
// id they were indexed under. The knowledge store stays the source of truth;
// the archive only preserves the original bytes for re-ingestion or audits.
type SourceService struct {
	client *minio.Client
	bucket string
}

func NewSourceService(endpoint, accessKeyID, secretAccessKey, bucket string, useSSL bool) (*SourceService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %v", err)
	}

	if bucket == "" {
		bucket = DefaultSourceBucket
	}

	return &SourceService{
		client: client,
		bucket: bucket,
	}, nil
}

func (s *SourceService) EnsureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
	}

	return nil
}

// ArchiveSource stores the raw upload under the document id.
func (s *SourceService) ArchiveSource(ctx context.Context, documentID int64, filename string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName(documentID), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
		UserMetadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to archive source: %v", err)
	}
	return nil
}

// RemoveSource drops the archived upload of a deleted document.
func (s *SourceService) RemoveSource(ctx context.Context, documentID int64) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName(documentID), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove source: %v", err)
	}
	return nil
}

func objectName(documentID int64) string {
	return strconv.FormatInt(documentID, 10)
}
