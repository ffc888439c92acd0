package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// multipartThreshold is the artifact size above which the managed
// multipart uploader is used instead of a single PutObject
const multipartThreshold = 100 * 1024 * 1024

// Uploader publishes written report artifacts to S3-compatible storage
type Uploader struct {
	config     *S3Config
	logger     *slog.Logger
	s3Client   *s3.S3
	s3Uploader *s3manager.Uploader
}

// NewUploader creates an Uploader with an established S3 session
func NewUploader(config *S3Config, logger *slog.Logger) (*Uploader, error) {
	region := config.Region
	if region == "" {
		region = regionAuto
	}

	sess, err := session.NewSession(&aws.Config{
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(region),
		Credentials:      credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return &Uploader{
		config:     config,
		logger:     logger,
		s3Client:   s3.New(sess),
		s3Uploader: s3manager.NewUploader(sess),
	}, nil
}

// UploadFile uploads one local artifact under the configured prefix,
// keyed by its basename
func (u *Uploader) UploadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s for upload: %w", path, err)
	}

	key := filepath.Base(path)
	if u.config.Prefix != "" {
		key = u.config.Prefix + "/" + key
	}

	u.logger.Debug(fmt.Sprintf("  ☁️  Uploading to s3://%s/%s (size: %d bytes)",
		u.config.Bucket, key, len(data)))

	if len(data) > multipartThreshold {
		uploadInput := &s3manager.UploadInput{
			Bucket:      aws.String(u.config.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String("text/csv"),
		}
		_, err := u.s3Uploader.Upload(uploadInput)
		return err
	}

	putInput := &s3.PutObjectInput{
		Bucket:      aws.String(u.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	}
	_, err = u.s3Client.PutObject(putInput)
	if err != nil {
		return err
	}

	u.logger.Info(fmt.Sprintf("Uploaded %s to s3://%s/%s", filepath.Base(path), u.config.Bucket, key))
	return nil
}
