package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/avasilkov/giftcal/internal/common"
)

// S3Config carries the settings needed to reach an S3-compatible bucket.
type S3Config struct {
	Region       string
	Bucket       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// S3Host keeps the snapshot document as a single object in a bucket. Unlike
// DriveHost, authentication happens at client-configuration level, so the
// bearer-credential hooks are no-ops; the object name doubles as the file id.
type S3Host struct {
	client *s3.Client
	bucket string
}

// NewS3Host builds a host over an S3-compatible endpoint using static
// credentials.
func NewS3Host(ctx context.Context, cfg S3Config) (*S3Host, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Host{client: client, bucket: cfg.Bucket}, nil
}

func (h *S3Host) Ping(ctx context.Context) error {
	_, err := h.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(h.bucket)})
	if err != nil {
		return fmt.Errorf("bucket unreachable: %w", err)
	}
	return nil
}

// SetCredential is a no-op: S3 requests are signed with the client's static
// credentials.
func (h *S3Host) SetCredential(Credential) {}

func (h *S3Host) ClearCredential() {}

func (h *S3Host) FindFile(ctx context.Context, name string) (string, error) {
	_, err := h.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("failed to stat object: %w", err)
	}
	return name, nil
}

func (h *S3Host) CreateFile(ctx context.Context, name string, content []byte) (string, error) {
	if err := h.Upload(ctx, name, content); err != nil {
		return "", err
	}
	return name, nil
}

func (h *S3Host) Download(ctx context.Context, fileID string) ([]byte, error) {
	out, err := h.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(fileID),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (h *S3Host) Upload(ctx context.Context, fileID string, content []byte) error {
	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(fileID),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(driveMimeType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}
