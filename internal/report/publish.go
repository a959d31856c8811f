package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader is the part of manager.Uploader the publisher uses.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Presigner is the part of s3.PresignClient the publisher uses.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Publisher uploads rendered charts to an S3 bucket and hands back a
// time-limited link to each.
type Publisher struct {
	uploader  Uploader
	presigner Presigner
	bucket    string
	prefix    string
	expires   time.Duration
	now       func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPrefix stores objects under prefix.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithExpiry sets how long presigned links stay valid. Default: 1 hour.
func WithExpiry(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.expires = d
		}
	}
}

// NewPublisher creates a Publisher writing to bucket.
func NewPublisher(uploader Uploader, presigner Presigner, bucket string, opts ...Option) *Publisher {
	p := &Publisher{
		uploader:  uploader,
		presigner: presigner,
		bucket:    bucket,
		expires:   time.Hour,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewS3Publisher creates a Publisher backed by the default AWS credential
// chain for region.
func NewS3Publisher(ctx context.Context, region, bucket string, opts ...Option) (*Publisher, error) {
	if bucket == "" {
		return nil, errors.New("report: bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return NewPublisher(manager.NewUploader(client), s3.NewPresignClient(client), bucket, opts...), nil
}

// Key returns the object key a chart called name is stored under.
func (p *Publisher) Key(name string) string {
	return path.Join(p.prefix, p.now().Format("2006-01-02")+"-"+name)
}

// Publish uploads data as name and returns a presigned GET link to it.
func (p *Publisher) Publish(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := p.Key(name)

	_, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3://%s: %w", key, p.bucket, err)
	}

	req, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}
