// Package s3 is the canonical remote blob.Store backend: an S3-compatible
// bucket addressed by the same content-derived keys used everywhere
// else, adapted from the teacher's KMS-material AWS client
// (internal/aws.LoadAWSConfig) and generalized from key-material storage
// to opaque blob storage.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	awsconfig "github.com/openrankprotocol/openrank-go/internal/aws"
	"github.com/openrankprotocol/openrank-go/pkg/blob"
)

// Store is an S3-backed blob.Store.
type Store struct {
	client *awss3.Client
	bucket string
	logger *zap.Logger
}

// New loads the ambient AWS config (profile or in-cluster, per
// internal/aws.LoadAWSConfig) and returns a Store targeting bucket.
func New(ctx context.Context, bucket, regionOverride string, logger *zap.Logger) (*Store, error) {
	cfg, err := awsconfig.LoadAWSConfig(ctx, regionOverride)
	if err != nil {
		return nil, fmt.Errorf("blob/s3: load aws config: %w", err)
	}
	return &Store{
		client: awss3.NewFromConfig(cfg),
		bucket: bucket,
		logger: logger,
	}, nil
}

// Put uploads data under key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("blob/s3: put %s: %w", key, err)
	}
	return nil
}

// Get downloads the bytes stored under key, or blob.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return nil, blob.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blob/s3: get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("blob/s3: read body %s: %w", key, err)
	}
	return data, nil
}

// Head reports whether key exists.
func (s *Store) Head(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("blob/s3: head %s: %w", key, err)
	}
	return true, nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nf *types.NoSuchKey
	if errors.As(err, &nf) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}
