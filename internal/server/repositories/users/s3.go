package users

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
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/server/models"
)

// S3ClientAPI is the part of *s3.Client the repository needs.
type S3ClientAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options describes an S3-compatible endpoint (AWS or MinIO).
type S3Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// NewS3Client builds a path-style S3 client with static credentials.
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(opts *s3.Options) {
		if o.BaseEndpoint != "" {
			opts.BaseEndpoint = aws.String(o.BaseEndpoint)
		}
		opts.UsePathStyle = true
	}), nil
}

// S3Repository keeps users as one JSON object in a bucket.
type S3Repository struct {
	client S3ClientAPI
	bucket string
	key    string
}

func NewS3Repository(client S3ClientAPI, bucket, key string) *S3Repository {
	return &S3Repository{client: client, bucket: bucket, key: key}
}

// Load reads the users object, creating it with an empty list when absent.
// The create is conditional so a concurrent Save is never replaced.
func (r *S3Repository) Load(ctx context.Context) ([]models.UserRecord, error) {
	records, err := r.get(ctx)
	var nsk *types.NoSuchKey
	if !errors.As(err, &nsk) {
		return records, err
	}

	empty := []models.UserRecord{}
	data, err := encodeRecords(empty)
	if err != nil {
		return nil, err
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		IfNoneMatch: aws.String("*"),
	})
	switch {
	case err == nil:
		return empty, nil
	case isConditionFailed(err):
		return r.get(ctx)
	default:
		return nil, fmt.Errorf("%w: put s3://%s/%s: %w", common.ErrorStorage, r.bucket, r.key, err)
	}
}

func (r *S3Repository) get(ctx context.Context) ([]models.UserRecord, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get s3://%s/%s: %w", common.ErrorStorage, r.bucket, r.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read s3://%s/%s: %w", common.ErrorStorage, r.bucket, r.key, err)
	}
	return decodeRecords(data)
}

// isConditionFailed reports whether an If-None-Match put lost to an
// existing or in-flight write of the same key.
func isConditionFailed(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}

func (r *S3Repository) Save(ctx context.Context, records []models.UserRecord) error {
	data, err := encodeRecords(records)
	if err != nil {
		return err
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("%w: put s3://%s/%s: %w", common.ErrorStorage, r.bucket, r.key, err)
	}
	return nil
}
