package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"vitrina/internal/core/config"
	"vitrina/internal/domain"
)

const callTimeout = 10 * time.Second

// S3Store S3 / MinIO 实现
type S3Store struct {
	client    *s3.Client
	presign   *s3.PresignClient
	uploader  *manager.Uploader
	bucket    string
	publicURL string
	ttl       time.Duration
}

// New media.enable=false 时返回 Nop
func New(ctx context.Context, c config.Media, l *zap.Logger) (Store, error) {
	if !c.Enable {
		l.Warn("media storage disabled")
		return Nop{}, nil
	}
	s, err := NewS3(ctx, c)
	if err != nil {
		return nil, err
	}
	l.Info("media storage ready", zap.String("bucket", c.Bucket), zap.String("endpoint", c.Endpoint))
	return s, nil
}

func NewS3(ctx context.Context, c config.Media) (*S3Store, error) {
	if c.Bucket == "" {
		return nil, errors.New("media: bucket is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.Region)}
	if c.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true // MinIO
		}
	})

	public := strings.TrimRight(c.PublicBaseURL, "/")
	if public == "" && c.Endpoint != "" {
		public = strings.TrimRight(c.Endpoint, "/") + "/" + c.Bucket
	}
	if public == "" {
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Bucket, c.Region)
	}
	ttl := time.Duration(c.UploadTTLMin) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3Store{
		client:    client,
		presign:   s3.NewPresignClient(client),
		uploader:  manager.NewUploader(client),
		bucket:    c.Bucket,
		publicURL: public,
		ttl:       ttl,
	}, nil
}

func (s *S3Store) PresignUpload(ctx context.Context, owner, fileName, mimeType, folder string) (*Upload, error) {
	key, err := ObjectKey(owner, folder, fileName, mimeType)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(mimeType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, wrap("presign", err)
	}
	return &Upload{
		URL:       req.URL,
		Method:    req.Method,
		PublicURL: s.publicURL + "/" + key,
		Key:       key,
		ExpiresAt: time.Now().Add(s.ttl).UTC(),
	}, nil
}

// Put 服务端直接上传（审核通过时发布资料照片）
func (s *S3Store) Put(ctx context.Context, owner, folder, fileName, mimeType string, data []byte) (string, error) {
	key, err := ObjectKey(owner, folder, fileName, mimeType)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	}); err != nil {
		return "", wrap("upload", err)
	}
	return s.publicURL + "/" + key, nil
}

func (s *S3Store) ListOwner(ctx context.Context, owner string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(ownerPrefix(owner)),
	})
	var keys []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, wrap("list", err)
		}
		for _, o := range page.Contents {
			keys = append(keys, aws.ToString(o.Key))
		}
	}
	return keys, nil
}

// DeleteOwner 删除 <owner>/ 下全部对象，返回删除数量
func (s *S3Store) DeleteOwner(ctx context.Context, owner string) (int, error) {
	keys, err := s.ListOwner(ctx, owner)
	if err != nil || len(keys) == 0 {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	deleted := 0
	for start := 0; start < len(keys); start += 1000 {
		end := min(start+1000, len(keys))
		ids := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
		}
		if _, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		}); err != nil {
			return deleted, wrap("delete", err)
		}
		deleted += len(ids)
	}
	return deleted, nil
}

func wrap(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Unavailable("media: "+op+" timeout", err)
	}
	return domain.Unavailable("media: "+op, err)
}
