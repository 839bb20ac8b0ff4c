package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/Rana718/seedforge/internal/config"
	"github.com/Rana718/seedforge/internal/export"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store uploads artifacts to a bucket and hands back a presigned
// download URL.
type S3Store struct {
	client  objectPutter
	presign getPresigner
	bucket  string
	prefix  string
	ttl     time.Duration
	now     func() time.Time
}

// NewS3Store loads AWS configuration for cfg. Static credentials are used
// when the configured environment variables are set; otherwise the default
// credential chain applies. A custom endpoint switches to path-style
// addressing for S3-compatible servers.
func NewS3Store(ctx context.Context, cfg config.S3) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	accessKey, secretKey := os.Getenv(cfg.AccessKeyEnv), os.Getenv(cfg.SecretKeyEnv)
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	} else if cfg.Endpoint != "" {
		return nil, fmt.Errorf("access key and secret key are required for a custom S3 endpoint")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// Key places an artifact under prefix/year/month with a unique stem so
// repeated exports of the same dataset never overwrite each other.
func (s *S3Store) Key(name string) string {
	now := s.now().UTC()
	key := fmt.Sprintf("%s/%s/%s_%s", now.Format("2006"), now.Format("01"), uuid.NewString(), path.Base(name))
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	return key
}

func (s *S3Store) Put(ctx context.Context, a *export.Artifact) (*Stored, error) {
	key := s.Key(a.Name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(a.Data),
		ContentLength:      aws.Int64(int64(len(a.Data))),
		ContentType:        aws.String(a.ContentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", a.Name)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to S3: %w", a.Name, err)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = s.ttl
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return &Stored{Key: key, Location: req.URL, Size: len(a.Data)}, nil
}
