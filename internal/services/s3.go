package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"assetvault/internal/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "assetvault/internal/config"
	"assetvault/internal/models"
)

// Ensure S3Service implements Storage and the signed URL generator
var _ Storage = (*S3Service)(nil)
var _ models.FileURLGenerator = (*S3Service)(nil)

type S3Service struct {
	client     *s3.Client
	presign    *s3.PresignClient
	bucketName string
	logger     *logger.Logger
}

func NewS3Service(cfg appconfig.S3Config) (*S3Service, error) {
	log := logger.New("s3_service")

	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, log.Error("S3 credentials are empty", fmt.Errorf("accessKey or secretKey is empty"))
	}

	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, log.Error("Unable to load SDK config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	// Verify credentials before serving traffic
	_, err = client.ListObjectsV2(context.TODO(), &s3.ListObjectsV2Input{
		Bucket: aws.String(cfg.BucketName),
	})
	if err != nil {
		return nil, log.Error("Failed to verify S3 credentials", err)
	}

	log.Success("S3 service initialized")

	return &S3Service{
		client:     client,
		presign:    s3.NewPresignClient(client),
		bucketName: cfg.BucketName,
		logger:     log,
	}, nil
}

// Upload stores the payload under a fresh uuid key and returns the key.
func (s *S3Service) Upload(ctx context.Context, content []byte, filename, contentType string) (string, error) {
	key := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", s.logger.Error("Failed to upload file to storage", err)
	}

	s.logger.Success("File stored: %s", key)
	return key, nil
}

// Download streams a stored object
func (s *S3Service) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.logger.Error("Failed to fetch file from storage", err)
	}
	return out.Body, nil
}

// GetSignedURL implements models.FileURLGenerator
func (s *S3Service) GetSignedURL(ctx context.Context, key string, duration time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
