// internal/adapters/storage/s3.go
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/ports"
)

const slotContentType = "application/json"

// s3API is the part of the S3 client the slot store calls
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	s3.ListObjectsV2APIClient
}

// S3Config holds S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // For MinIO/LocalStack
	UsePathStyle    bool   // For MinIO/LocalStack
}

// SlotStore keeps one JSON object per cart slot under a key prefix
type SlotStore struct {
	client s3API
	bucket string
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

var (
	_ ports.SlotStore   = (*SlotStore)(nil)
	_ ports.SlotSweeper = (*SlotStore)(nil)
)

// NewSlotStore creates an S3 client and makes sure the bucket exists
func NewSlotStore(ctx context.Context, cfg *S3Config, logger *slog.Logger) (*SlotStore, error) {
	awsCfg, err := buildAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.EndpointResolver = s3.EndpointResolverFromURL(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	if err := ensureBucket(ctx, client, cfg.Bucket, cfg.Region, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket: %w", err)
	}

	logger.Info("S3 slot storage initialized",
		slog.String("bucket", cfg.Bucket),
		slog.String("prefix", cfg.Prefix),
		slog.String("region", cfg.Region))

	return newSlotStore(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func newSlotStore(client s3API, bucket, prefix string, logger *slog.Logger) *SlotStore {
	return &SlotStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With(slog.String("storage", "s3")),
		now:    time.Now,
	}
}

func buildAWSConfig(ctx context.Context, cfg *S3Config) (aws.Config, error) {
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		return config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretAccessKey,
					"",
				),
			),
		)
	}

	return config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
}

func ensureBucket(ctx context.Context, client *s3.Client, bucket, region string, logger *slog.Logger) error {
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err == nil {
		return nil
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 rejects an explicit location constraint
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("bucket %s does not exist and could not be created: %w", bucket, err)
	}

	logger.Info("created S3 bucket", slog.String("bucket", bucket))
	return nil
}

// ObjectKey maps a slot key to its S3 object key
func (s *SlotStore) ObjectKey(key string) string {
	return s.prefix + key + ".json"
}

// Load downloads a slot object
func (s *SlotStore) Load(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.ObjectKey(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to get slot %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return data, nil
}

// Save uploads the slot object, replacing any previous version
func (s *SlotStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.ObjectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(slotContentType),
		Metadata: map[string]string{
			"slot-key": key,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put slot %s: %w", key, err)
	}

	s.logger.DebugContext(ctx, "slot uploaded",
		slog.String("key", key),
		slog.Int("size", len(data)))
	return nil
}

// Delete removes the slot object. S3 treats missing keys as success.
func (s *SlotStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.ObjectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

// Ping checks the bucket is reachable
func (s *SlotStore) Ping(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("s3 bucket %s unreachable: %w", s.bucket, err)
	}
	return nil
}

// Sweep deletes slot objects last modified before olderThan ago
func (s *SlotStore) Sweep(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	removed := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return removed, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			if obj.Key == nil || !strings.HasSuffix(*obj.Key, ".json") {
				continue
			}
			if obj.LastModified == nil || !obj.LastModified.Before(cutoff) {
				continue
			}
			if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			}); err != nil {
				s.logger.WarnContext(ctx, "failed to delete stale slot",
					slog.String("object", *obj.Key),
					"err", err)
				continue
			}
			removed++
		}
	}

	s.logger.InfoContext(ctx, "swept stale slots",
		slog.Int("removed", removed),
		slog.Duration("older_than", olderThan))
	return removed, nil
}
