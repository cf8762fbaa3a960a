// Package storage issues presigned URLs for vault payloads held in an
// S3-compatible object store. Payload bytes never pass through the API.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dimitrije/capsule-api/internal/config"
	"github.com/google/uuid"
)

type S3Storage struct {
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
}

func NewS3Storage(ctx context.Context, cfg config.S3Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	return &S3Storage{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		expiry:  expiry,
	}, nil
}

// PayloadKey returns a fresh object key scoped under the capsule.
func PayloadKey(capsuleID uuid.UUID) string {
	d := time.Now().UTC()
	return fmt.Sprintf("capsules/%s/vault/%04d/%02d/%02d/%s", capsuleID, d.Year(), d.Month(), d.Day(), uuid.New())
}

// BelongsTo reports whether key was issued for capsuleID by PayloadKey.
func BelongsTo(key string, capsuleID uuid.UUID) bool {
	return strings.HasPrefix(key, "capsules/"+capsuleID.String()+"/vault/")
}

func (s *S3Storage) PresignPut(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return req.URL, nil
}

func (s *S3Storage) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, nil
}

func (s *S3Storage) Expiry() time.Duration {
	return s.expiry
}
