package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"minivcs/pkg/core"
	"minivcs/pkg/storage"
	"minivcs/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// objectAPI 是 Adapter 用到的 S3 操作子集，*s3.Client 满足它
type objectAPI interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Adapter 把对象存进一个 bucket，Key 布局与磁盘的 objects/ 目录一致
type Adapter struct {
	api    objectAPI
	bucket string
	prefix string // 例如 "team/project/"，多个仓库可共用一个 bucket
}

// Config 用于初始化 Adapter
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

// NewAdapter 连接 S3 (或 MinIO)，bucket 不存在时尝试创建
func NewAdapter(ctx context.Context, cfg Config) (*Adapter, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		// MinIO 只支持 Path Style: http://host:9000/bucket/key
		o.UsePathStyle = true
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
			// 可能只是没有建桶权限，真正的错误留给第一次读写
			slog.Warn("failed to ensure bucket exists", slog.String("bucket", cfg.Bucket), slog.Any("err", err))
		}
	}

	return newAdapter(client, cfg.Bucket, cfg.Prefix), nil
}

func newAdapter(api objectAPI, bucket, prefix string) *Adapter {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &Adapter{api: api, bucket: bucket, prefix: prefix}
}

// Location 标识 bucket 与前缀
func (s *Adapter) Location() string {
	return "s3://" + s.bucket + "/" + s.prefix
}

func (s *Adapter) key(hash types.Hash) string {
	return s.prefix + storage.ObjectKey(hash)
}

// Put 上传对象，已存在则跳过
func (s *Adapter) Put(ctx context.Context, obj core.Object) error {
	// HEAD 比重复上传便宜
	exists, err := s.Has(ctx, obj.ID())
	if err != nil {
		return fmt.Errorf("s3 put existence check failed: %w", err)
	}
	if exists {
		return nil
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(obj.ID())),
		Body:        bytes.NewReader(obj.Bytes()),
		ContentType: aws.String("application/octet-stream"),
		Metadata:    map[string]string{"object-type": obj.Type().String()},
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", obj.ID(), err)
	}
	return nil
}

// Get 返回对象的落盘编码
func (s *Adapter) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	resp, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(hash)),
	})
	if isNotFound(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("s3 get %s: %w", hash, err)
	}
	return resp.Body, nil
}

// Has 用 HEAD 检查对象是否存在
func (s *Adapter) Has(ctx context.Context, hash types.Hash) (bool, error) {
	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(hash)),
	})
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("s3 head %s: %w", hash, err)
	}
}

// ExpandHash 按 Key 前缀列举，最多取两个就能判断唯一或歧义
func (s *Adapter) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	prefix, err := storage.NormalizePrefix(short)
	if err != nil {
		return "", err
	}

	resp, err := s.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.key(types.Hash(prefix))),
		MaxKeys: aws.Int32(2),
	})
	if err != nil {
		return "", fmt.Errorf("s3 list %s: %w", prefix, err)
	}

	var candidates []types.Hash
	for _, o := range resp.Contents {
		if h, ok := storage.HashFromKey(strings.TrimPrefix(aws.ToString(o.Key), s.prefix)); ok {
			candidates = append(candidates, h)
		}
	}
	return storage.PickUnique(prefix, candidates)
}

// isNotFound 识别各家 S3 实现表达 "不存在" 的方式
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var notFound *s3types.NotFound
	var noKey *s3types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noKey) {
		return true
	}
	// HEAD 没有响应体，部分实现只给出状态码
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	var status interface{ HTTPStatusCode() int }
	return errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotFound
}
