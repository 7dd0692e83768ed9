// Package upload stores files in S3 and keeps a log of every upload.
package upload

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/gqlerr"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/repository"
)

// Config describes the bucket uploads go to.
type Config struct {
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	// Endpoint overrides the AWS endpoint, e.g. for MinIO. Path-style addressing is used when set.
	Endpoint string
	// OriginAlt replaces the bucket origin in logged uploads, e.g. a CDN host.
	OriginAlt string
}

// Enabled reports whether enough is configured to talk to S3.
func (c Config) Enabled() bool {
	return c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

// ObjectPutter is the slice of the S3 client uploads need.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds an S3 client with static credentials.
func NewS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return client, nil
}

// File is one uploaded part.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// LogList is one page of upload logs and the total match count.
type LogList struct {
	Total int
	Data  []models.UploadLog
}

// Service puts files into the bucket and records them.
type Service struct {
	logs   repository.UploadLogRepository
	client ObjectPutter
	cfg    Config
	now    func() time.Time
}

// NewService constructs an upload Service. A nil client disables uploads.
func NewService(logs repository.UploadLogRepository, client ObjectPutter, cfg Config) *Service {
	return &Service{logs: logs, client: client, cfg: cfg, now: time.Now}
}

// Enabled reports whether Upload can store files.
func (s *Service) Enabled() bool {
	return s.client != nil && s.cfg.Bucket != ""
}

// Upload stores file publicly readable and logs it against actor and the caller address from.
func (s *Service) Upload(ctx context.Context, actor *models.User, from string, file File) (*models.UploadLog, error) {
	if !s.Enabled() {
		return nil, gqlerr.Invalid("upload not enabled")
	}

	key := objectKey(s.now(), file.Filename)
	input := &s3.PutObjectInput{
		Bucket:               aws.String(s.cfg.Bucket),
		Key:                  aws.String(key),
		Body:                 file.Body,
		ACL:                  types.ObjectCannedACLPublicRead,
		ServerSideEncryption: types.ServerSideEncryptionAes256,
		ContentDisposition:   aws.String("inline"),
	}
	if file.ContentType != "" {
		input.ContentType = aws.String(file.ContentType)
	}
	if file.Size > 0 {
		input.ContentLength = aws.Int64(file.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	location, err := s.objectURL(key)
	if err != nil {
		return nil, err
	}

	origin := location.Scheme + "://" + location.Host
	if s.cfg.OriginAlt != "" {
		origin = s.cfg.OriginAlt
	}
	// path-style URLs carry the bucket as the first segment
	objectPath := strings.TrimPrefix(location.Path, "/"+s.cfg.Bucket)

	entry := &models.UploadLog{
		Provider: models.UploadProviderS3,
		Origin:   origin,
		Path:     objectPath,
		Mimetype: file.ContentType,
		Href:     location.String(),
	}
	if actor != nil {
		entry.UserID = &actor.ID
	}
	if from != "" {
		entry.From = &from
	}

	if err := s.logs.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns one page of upload logs.
func (s *Service) List(ctx context.Context, search repository.ListSearch, paging *repository.Paging) (*LogList, error) {
	logs, total, err := s.logs.List(ctx, search, paging)
	if err != nil {
		return nil, err
	}
	return &LogList{Total: total, Data: logs}, nil
}

// objectURL is where the bucket serves key.
func (s *Service) objectURL(key string) (*url.URL, error) {
	raw := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	if s.cfg.Endpoint != "" {
		raw = strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + key
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("build object url: %w", err)
	}
	return u, nil
}

// objectKey is uploads/<year>/<month>-<day>/chamfer<hex unix ms><ext>.
func objectKey(now time.Time, filename string) string {
	return fmt.Sprintf("uploads/%d/%d-%d/chamfer%s%s",
		now.Year(),
		int(now.Month()),
		now.Day(),
		strconv.FormatInt(now.UnixMilli(), 16),
		path.Ext(filename),
	)
}
