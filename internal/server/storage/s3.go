// Package storage resolves stored log objects to downloadable addresses.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/devlogs/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3Locator turns an object key into a time-limited presigned GET URL on an
// S3-compatible store. Nothing is cached; each call signs afresh.
type S3Locator struct {
	bucket string
	expiry time.Duration
	client *s3.PresignClient
}

// NewS3Locator builds the presign client from cfg. Credentials are static;
// the endpoint uses path-style addressing so MinIO works unchanged.
func NewS3Locator(ctx context.Context, cfg *sc.Config) (*S3Locator, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Locator{
		bucket: cfg.S3Bucket,
		expiry: cfg.PresignExpiry,
		client: newS3PresignClient(client),
	}, nil
}

// Resolve presigns a GET for objectKey.
func (l *S3Locator) Resolve(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", errors.New("empty object key")
	}
	req, err := presignGetObject(l.client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(l.expiry))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", objectKey, err)
	}
	return req.URL, nil
}
