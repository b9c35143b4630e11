// Package artifactstore mirrors generated report artifacts to S3-compatible object storage.
package artifactstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/target/quizreport/internal/core"
	"github.com/target/quizreport/internal/domain/model"
)

// Config configures a Store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// Prefix is prepended to every object key.
	Prefix string
	// CreateBucket creates the bucket at startup when it is missing.
	CreateBucket bool
	Logger       *slog.Logger
}

// Store writes artifacts as JSON objects keyed by tenant and purchase.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

var _ core.ArtifactMirror = (*Store)(nil)

// New connects to the object store and checks the bucket.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("artifact store endpoint is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("artifact store bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.CreateBucket {
			return nil, fmt.Errorf("bucket %s does not exist", cfg.Bucket)
		}
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: cli,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger.With("component", "artifact_store"),
	}, nil
}

// ObjectKey returns the key an artifact is stored under: <prefix>/<tenant>/<purchase>.json.
func ObjectKey(prefix string, artifact *model.ReportArtifact) string {
	name := url.PathEscape(artifact.PurchaseID) + ".json"
	return path.Join(strings.Trim(prefix, "/"), url.PathEscape(artifact.TenantID), name)
}

// Mirror uploads the artifact. Overwriting is harmless because artifacts are immutable.
func (s *Store) Mirror(ctx context.Context, artifact *model.ReportArtifact) error {
	if artifact == nil {
		return errors.New("artifact is required")
	}
	body, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}

	key := ObjectKey(s.prefix, artifact)
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"tenant-id":       artifact.TenantID,
			"test-id":         artifact.TestID,
			"style-id":        artifact.StyleID,
			"prompt-version":  artifact.PromptVersion,
			"scoring-version": artifact.ScoringVersion,
		},
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	s.logger.DebugContext(ctx, "artifact mirrored", "key", key, "size", info.Size, "etag", info.ETag)
	return nil
}
