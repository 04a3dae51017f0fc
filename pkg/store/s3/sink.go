package s3

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strconv"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/jyotish-atlas/pkg/models/store"
)

const DefaultRegion = "us-east-1"

type Settings struct {
	Bucket string
	Prefix string
	Region string
	// Endpoint targets an S3 compatible service (MinIO, localstack) with path-style addressing.
	Endpoint string
	Profile  string
	// AccessKeyID and SecretAccessKey, when both set, replace the default credential chain.
	AccessKeyID     string
	SecretAccessKey string
}

// LoadConfig builds an AWS config from the default chain plus settings overrides.
func LoadConfig(ctx context.Context, settings Settings) (awssdk.Config, error) {
	region := settings.Region
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if settings.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(settings.Profile))
	}
	if settings.AccessKeyID != "" && settings.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.AccessKeyID, settings.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return awssdk.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return cfg, nil
}

// Sink mirrors exported report files into a bucket.
type Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewSink(cfg awssdk.Config, settings Settings) (*Sink, error) {
	if settings.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = awssdk.String(settings.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Sink{client: client, bucket: settings.Bucket, prefix: settings.Prefix}, nil
}

func (s *Sink) Name() string {
	return "s3"
}

// Key is the object key a report file is stored under.
func (s *Sink) Key(record store.ReportRecord) string {
	return path.Join(s.prefix, filepath.Base(record.Path))
}

func (s *Sink) Store(ctx context.Context, record store.ReportRecord) error {
	f, err := os.Open(record.Path)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(record.Path))
	if contentType == "" || record.Fallback {
		contentType = "text/plain; charset=utf-8"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(s.bucket),
		Key:         awssdk.String(s.Key(record)),
		Body:        f,
		ContentType: awssdk.String(contentType),
		Metadata: map[string]string{
			"report-id": record.ID,
			"format":    record.Format,
			"fallback":  strconv.FormatBool(record.Fallback),
		},
	})
	if err != nil {
		return fmt.Errorf("put object s3://%s/%s: %w", s.bucket, s.Key(record), err)
	}
	return nil
}
