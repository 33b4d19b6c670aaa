package s3infra

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/infrastructure/awsconf"
)

// maxTemplateSize caps the object read so a wrong key cannot pull a large blob into memory.
const maxTemplateSize = 256 << 10

type getObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// TemplateSource reads the verification email template from a bucket.
type TemplateSource struct {
	client getObjectAPI
	bucket string
	key    string
}

// NewClient creates an S3 client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint and enables path-style addressing.
func NewClient(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconf.Load(ctx, cfg, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	clientOpts := []func(*s3.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...), nil
}

func NewTemplateSource(client getObjectAPI, bucket, key string) *TemplateSource {
	return &TemplateSource{client: client, bucket: bucket, key: key}
}

// Load returns the template body.
func (s *TemplateSource) Load(ctx context.Context) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return "", fmt.Errorf("s3 get object %s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(io.LimitReader(out.Body, maxTemplateSize+1))
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	if len(b) > maxTemplateSize {
		return "", fmt.Errorf("template %s/%s exceeds %d bytes", s.bucket, s.key, maxTemplateSize)
	}
	return string(b), nil
}
