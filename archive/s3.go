package archive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Bucket   string
	Region   string
	Endpoint string
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Sink uploads exports to Amazon S3 or an S3 compatible endpoint.
type S3Sink struct {
	bucket   string
	uploader uploader
}

// NewS3Sink loads the default AWS credential chain. A custom endpoint switches
// the client to path-style addressing, which MinIO and friends expect.
func NewS3Sink(ctx context.Context, cfg Config, log logrus.FieldLogger) (*S3Sink, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrDisabled
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	log.WithFields(logrus.Fields{"bucket": cfg.Bucket, "region": cfg.Region}).Info("report archive enabled")
	return &S3Sink{bucket: cfg.Bucket, uploader: manager.NewUploader(client)}, nil
}

func (s *S3Sink) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if s == nil || s.uploader == nil {
		return "", ErrDisabled
	}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, name), nil
}

var _ Sink = (*S3Sink)(nil)
