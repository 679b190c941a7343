// Package archive mirrors saved statements to S3.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultRegion is used when neither the profile nor S3Config names one.
const DefaultRegion = "us-east-1"

// ErrNoBucket is returned by NewS3 when S3Config.Bucket is empty.
var ErrNoBucket = errors.New("archive: bucket is required")

// PutObjectAPI is the subset of *s3.Client the archive uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config selects the bucket and the AWS credentials.
type S3Config struct {
	Bucket  string
	Prefix  string
	Profile string // shared config profile; empty uses the default chain
	Region  string
}

// S3 uploads statements under Prefix in Bucket.
type S3 struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3 loads the AWS configuration and returns an archive for cfg.Bucket.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}
	opts := []func(*config.LoadOptions) error{config.WithDefaultRegion(region)}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return NewS3WithClient(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix), nil
}

// NewS3WithClient returns an archive using client.
func NewS3WithClient(client PutObjectAPI, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for a statement key such as
// "2025-1-1/2024-12-01_to_2024-12-31_Statement.pdf".
func (a *S3) Key(key string) string {
	if a.prefix == "" {
		return key
	}
	return path.Join(a.prefix, key)
}

// Archive uploads body as a PDF.
func (a *S3) Archive(ctx context.Context, key string, body []byte) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(a.Key(key)),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", a.bucket, a.Key(key), err)
	}
	return nil
}
