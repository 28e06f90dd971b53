package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "bcrawatch/config"
	"bcrawatch/internal/model"
	"bcrawatch/logger"
)

const s3UploadTimeout = 30 * time.Second

// S3Sink overwrites a single object with the latest snapshot so a static
// front end can read it. No history is kept.
type S3Sink struct {
	client  *s3.Client
	bucket  string
	key     string
	version string
	log     *logger.Log
}

func NewS3Sink(ctx context.Context, cfg appconfig.S3Config, version string) (*S3Sink, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("s3 sink disabled")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 sink requires a bucket")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	key := cfg.Key
	if key == "" {
		key = appconfig.DefaultS3Key
	}

	log := logger.GetLogger()
	log.WithComponent("s3_sink").WithFields(logger.Fields{
		"bucket": cfg.Bucket,
		"key":    key,
		"region": cfg.Region,
	}).Debug("s3 sink initialized")

	return &S3Sink{client: client, bucket: cfg.Bucket, key: key, version: version, log: log}, nil
}

func (s *S3Sink) Name() string { return "s3" }

func (s *S3Sink) Publish(ctx context.Context, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(s.key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("no-cache"),
		Metadata: map[string]string{
			"cycle-id":          snap.CycleID,
			"bcrawatch-version": s.version,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, s3UploadTimeout)
	defer cancel()

	start := time.Now()
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}

	logger.LogDataFlowEntry(s.log.WithComponent("s3_sink").WithCycle(snap.CycleID), "pipeline", "s3", len(data), "bytes")
	logger.LogPerformanceEntry(s.log.WithComponent("s3_sink"), "s3_sink", "put_snapshot", time.Since(start), nil)
	return nil
}
