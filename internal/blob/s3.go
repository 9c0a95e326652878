package blob

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/spec-kit/game-rental-service/internal/config"
)

// Remover deletes stored catalog image blobs. The moderation flow removes
// the losing image (old on approve, proposed on reject).
type Remover interface {
	Remove(ctx context.Context, key string) error
}

// S3Remover implements Remover against an S3-compatible endpoint.
type S3Remover struct {
	client *s3.Client
	bucket string
}

// NewS3Remover builds the client from static credentials.
func NewS3Remover(ctx context.Context, cfg config.S3Config) (*S3Remover, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Remover{client: client, bucket: cfg.Bucket}, nil
}

// Remove deletes one object.
func (r *S3Remover) Remove(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// NoopRemover is used when blob storage is not configured.
type NoopRemover struct{}

// Remove does nothing.
func (NoopRemover) Remove(context.Context, string) error { return nil }
