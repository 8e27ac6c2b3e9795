package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// S3Settings locate the avatar bucket. Endpoint may point at MinIO.
type S3Settings struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	Bucket    string
	Expires   time.Duration
}

// S3Presigner signs PUT URLs for avatar uploads. The presign client is built
// lazily on first use and reused afterwards.
type S3Presigner struct {
	settings S3Settings

	once   sync.Once
	client *s3.PresignClient
	err    error
}

func NewS3Presigner(settings S3Settings) (*S3Presigner, error) {
	if settings.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if settings.Expires <= 0 {
		settings.Expires = 15 * time.Minute
	}
	return &S3Presigner{settings: settings}, nil
}

func (p *S3Presigner) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	p.once.Do(func() {
		opts := []func(*config.LoadOptions) error{config.WithRegion(p.settings.Region)}
		if p.settings.AccessKey != "" {
			opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				p.settings.AccessKey, p.settings.SecretKey, "")))
		}

		cfg, err := loadDefaultAWSConfig(ctx, opts...)
		if err != nil {
			p.err = err
			return
		}

		client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
			if p.settings.Endpoint != "" {
				o.BaseEndpoint = aws.String(p.settings.Endpoint)
				o.UsePathStyle = true
			}
		})
		p.client = newS3PresignClient(client)
	})
	return p.client, p.err
}

func (p *S3Presigner) PresignPut(ctx context.Context, key string) (string, error) {
	pc, err := p.presignClient(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.settings.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.settings.Expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
