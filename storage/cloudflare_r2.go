package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type CloudflareR2UploaderConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

type cloudflareR2Uploader struct {
	s3Client      *s3.Client
	bucketName    string
	publicBaseURL *url.URL
}

func NewCloudflareR2Uploader(ctx context.Context, cfg CloudflareR2UploaderConfig) (FileUploader, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.BucketName == "" || cfg.PublicBaseURL == "" {
		return nil, errors.New("invalid Cloudflare R2 configuration: all fields are required")
	}

	baseURL, err := url.Parse(strings.TrimRight(cfg.PublicBaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid R2 public base URL: %w", err)
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"), // R2 требует регион "auto"
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	s3Client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &cloudflareR2Uploader{
		s3Client:      s3Client,
		bucketName:    cfg.BucketName,
		publicBaseURL: baseURL,
	}, nil
}

func (u *cloudflareR2Uploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	result, err := u.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucketName),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object to R2 (key: %s): %w", key, err)
	}

	etag := ""
	if result.ETag != nil {
		// ETag от S3-совместимых API приходит в двойных кавычках.
		etag = strings.Trim(*result.ETag, "\"")
	}

	slog.DebugContext(ctx, "object uploaded", slog.String("key", key), slog.String("etag", etag))
	return &UploadResult{
		Key:      key,
		Location: u.GetPublicURL(key),
		ETag:     etag,
	}, nil
}

func (u *cloudflareR2Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from R2 (key: %s): %w", key, err)
	}
	return nil
}

func (u *cloudflareR2Uploader) GetPublicURL(key string) string {
	return publicURL(u.publicBaseURL, key)
}

func publicURL(base *url.URL, key string) string {
	if base == nil || key == "" {
		return ""
	}
	ref := &url.URL{Path: strings.TrimPrefix(key, "/")}
	return base.ResolveReference(ref).String()
}
