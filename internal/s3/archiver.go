// internal/s3/archiver.go
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"greencart-ops-api/config"
	"greencart-ops-api/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// PutObjectAPI is the subset of the S3 client the archiver uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ReportArchiver stores a JSON copy of every finished simulation run.
type ReportArchiver struct {
	client           PutObjectAPI
	bucket           string
	region           string
	cloudFrontDomain string
	logger           *zap.Logger
}

// NewReportArchiver builds an S3-backed archiver. Static credentials are used
// when configured, otherwise the default AWS credential chain.
func NewReportArchiver(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (*ReportArchiver, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load AWS config: %w", err)
	}

	return NewReportArchiverWithClient(s3.NewFromConfig(sdkConfig), cfg, logger), nil
}

func NewReportArchiverWithClient(client PutObjectAPI, cfg config.S3Config, logger *zap.Logger) *ReportArchiver {
	return &ReportArchiver{
		client:           client,
		bucket:           cfg.Bucket,
		region:           cfg.Region,
		cloudFrontDomain: cfg.CloudFrontDomain,
		logger:           logger,
	}
}

func ObjectKey(sim *models.Simulation) string {
	return fmt.Sprintf("simulations/%s.json", sim.ID.Hex())
}

// Archive uploads the run record and returns its public URL.
func (a *ReportArchiver) Archive(ctx context.Context, sim *models.Simulation) (string, error) {
	body, err := json.Marshal(sim)
	if err != nil {
		return "", fmt.Errorf("s3: encode simulation: %w", err)
	}

	key := ObjectKey(sim)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("s3: put %s: %w", key, err)
	}
	return a.objectURL(key), nil
}

func (a *ReportArchiver) objectURL(key string) string {
	if a.cloudFrontDomain != "" {
		return fmt.Sprintf("https://%s/%s", a.cloudFrontDomain, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, key)
}

func (a *ReportArchiver) SimulationCompleted(ctx context.Context, sim *models.Simulation) error {
	url, err := a.Archive(ctx, sim)
	if err != nil {
		return err
	}
	a.logger.Info("simulation report archived", zap.String("simulation_id", sim.ID.Hex()), zap.String("url", url))
	return nil
}
