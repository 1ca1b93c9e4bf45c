package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config contains S3 storage configuration.
type S3Config struct {
	Endpoint        string // optional, for MinIO or DigitalOcean Spaces
	Region          string
	Bucket          string
	AccessKeyID     string // empty uses the default credential chain
	SecretAccessKey string
	UsePathStyle    bool
	PublicBaseURL   string // optional CDN in front of the bucket
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store handles S3-compatible object storage.
type S3Store struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

// NewS3Store creates a client for cfg.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: S3 bucket name is required")
	}
	if cfg.Region == "" {
		return nil, errors.New("storage: S3 region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Store(client, cfg), nil
}

func newS3Store(client putObjectAPI, cfg S3Config) *S3Store {
	return &S3Store{client: client, bucket: cfg.Bucket, baseURL: publicBaseURL(cfg)}
}

// BaseURL is the prefix of every URL Put returns.
func (s *S3Store) BaseURL() string {
	return s.baseURL
}

// Put uploads data at key and returns its public URL.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(cleanKey),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put object %s: %w", cleanKey, err)
	}
	return s.baseURL + "/" + cleanKey, nil
}

func publicBaseURL(cfg S3Config) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	if cfg.Endpoint != "" {
		endpoint := strings.TrimRight(cfg.Endpoint, "/")
		if cfg.UsePathStyle {
			return endpoint + "/" + cfg.Bucket
		}
		if scheme, host, ok := strings.Cut(endpoint, "://"); ok {
			return scheme + "://" + cfg.Bucket + "." + host
		}
		return endpoint + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}
