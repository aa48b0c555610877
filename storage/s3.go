package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"art-seeder/config"
	"art-seeder/services"
)

// reportPrefix ist das Verzeichnis der archivierten Laufberichte im Bucket.
const reportPrefix = "reports/"

// ObjectStore ist der Teil des S3-Clients, den das Archiv benötigt.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewS3Client erstellt einen S3-Client für einen S3-kompatiblen Endpunkt.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.S3URL,
				SigningRegion:     cfg.S3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// ReportArchive legt Laufberichte als JSON im Bucket ab und behält nur die neuesten Keep Stück.
type ReportArchive struct {
	Client ObjectStore
	Bucket string
	Keep   int
	Logger *zap.Logger
}

func NewReportArchive(client ObjectStore, cfg *config.Config, logger *zap.Logger) *ReportArchive {
	return &ReportArchive{Client: client, Bucket: cfg.S3Bucket, Keep: cfg.S3KeepReports, Logger: logger}
}

// SaveReport lädt den Bericht hoch und rotiert danach alte Berichte.
func (a *ReportArchive) SaveReport(ctx context.Context, report *services.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	key := reportPrefix + report.RunID + ".json"
	_, err = a.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("bericht %s hochladen: %w", key, err)
	}
	a.Logger.Info("Bericht archiviert", zap.String("bucket", a.Bucket), zap.String("key", key))

	return a.Rotate(ctx)
}

// Rotate löscht alle Berichte außer den Keep neuesten. Keep = 0 behält alle.
func (a *ReportArchive) Rotate(ctx context.Context) error {
	if a.Keep <= 0 {
		return nil
	}

	var objects []types.Object
	p := s3.NewListObjectsV2Paginator(a.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.Bucket),
		Prefix: aws.String(reportPrefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("berichte auflisten: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil && strings.HasSuffix(*obj.Key, ".json") {
				objects = append(objects, obj)
			}
		}
	}

	if len(objects) <= a.Keep {
		a.Logger.Debug("Keine Rotation nötig", zap.Int("reports", len(objects)), zap.Int("keep", a.Keep))
		return nil
	}

	sort.Slice(objects, func(i, j int) bool {
		return aws.ToTime(objects[i].LastModified).After(aws.ToTime(objects[j].LastModified))
	})

	for _, obj := range objects[a.Keep:] {
		a.Logger.Info("Lösche alten Bericht", zap.String("key", *obj.Key))
		_, err := a.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(a.Bucket),
			Key:    obj.Key,
		})
		if err != nil {
			a.Logger.Error("Fehler beim Löschen", zap.String("key", *obj.Key), zap.Error(err))
		}
	}
	return nil
}
