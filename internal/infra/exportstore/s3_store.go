package exportstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/dreamvision/internal/domain/dream"
)

const exportContentType = "application/json"

// S3Store writes export archives to S3 compatible storage and hands back a
// presigned download URL.
type S3Store struct {
	client *minio.Client
	bucket string
	urlTTL time.Duration
	logger *slog.Logger

	bucketMu    sync.Mutex
	bucketReady bool
}

// NewS3Store constructs the storage adapter.
func NewS3Store(endpoint, accessKey, secretKey, bucket, region string, urlTTL time.Duration, logger *slog.Logger) (*S3Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL(endpoint),
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init export storage client: %w", err)
	}
	return &S3Store{
		client: client,
		bucket: bucket,
		urlTTL: urlTTL,
		logger: logger.With("component", "exportstore.s3"),
	}, nil
}

// SaveExport uploads the payload and presigns a GET for it.
func (s *S3Store) SaveExport(ctx context.Context, key string, payload []byte) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure export bucket: %w", err)
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType:      exportContentType,
		DisableMultipart: len(payload) < 5*1024*1024,
	})
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.urlTTL, nil)
	if err != nil {
		return "", fmt.Errorf("presign export: %w", err)
	}
	s.logger.Info("export stored", "key", key, "bytes", len(payload))
	return u.String(), nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.bucketMu.Lock()
	defer s.bucketMu.Unlock()
	if s.bucketReady {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		s.bucketReady = true
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	s.bucketReady = true
	return nil
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if host, _, found := strings.Cut(raw, "/"); found {
		raw = host
	}
	return raw
}

func useSSL(endpoint string) bool {
	return !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://")
}

var _ dream.ExportStore = (*S3Store)(nil)
