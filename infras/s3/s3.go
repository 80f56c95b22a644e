package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"elc/config"
	"elc/infras/otel"
	"elc/shared/constant"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	otelAttrObject = "s3.object"
	otelAttrBucket = "s3.bucket"
	otelAttrSize   = "s3.size"

	defaultRegion      = "auto"
	defaultContentType = "application/octet-stream"
)

// S3 stores room images and learning resources in the configured bucket.
// Objects live under a directory named after the owning entity.
type S3 interface {
	UploadFile(ctx context.Context, directory string, file multipart.File, header *multipart.FileHeader, objectName string) (url string, err error)
	DeleteFile(ctx context.Context, directory, objectName string) error
	ObjectName(url string) string
}

type s3Impl struct {
	client *s3.Client
	bucket string
	domain string
	api    string
	otel   otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) S3 {
	conf := cfg.External.S3

	region := conf.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(region),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretAccessKey, "")),
	)
	if err != nil {
		log.Error().Err(err).Msg("Error loading AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if conf.APIEndpoint != "" {
			o.BaseEndpoint = aws.String(conf.APIEndpoint)
		}

		o.UsePathStyle = true
	})

	return &s3Impl{
		client: client,
		bucket: conf.BucketName,
		domain: strings.TrimSuffix(conf.PublicDomain, "/"),
		api:    strings.TrimSuffix(conf.APIEndpoint, "/"),
		otel:   otel,
	}
}

// UploadFile streams file to directory/objectName and returns its public URL.
func (svc *s3Impl) UploadFile(ctx context.Context, directory string, file multipart.File, header *multipart.FileHeader, objectName string) (url string, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".UploadFile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := path.Join(directory, objectName)

	scope.SetAttributes(map[string]any{
		otelAttrObject: key,
		otelAttrBucket: svc.bucket,
		otelAttrSize:   header.Size,
	})

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(svc.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(contentType(header)),
		ContentLength: aws.Int64(header.Size),
	})
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return svc.domain + "/" + key, nil
}

func (svc *s3Impl) DeleteFile(ctx context.Context, directory, objectName string) (err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".DeleteFile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key := path.Join(directory, objectName)

	scope.SetAttributes(map[string]any{
		otelAttrObject: key,
		otelAttrBucket: svc.bucket,
	})

	_, err = svc.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(svc.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete file from S3")

		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}

// ObjectName returns the object name, without directory, of a URL produced by
// UploadFile. URLs outside the bucket yield an empty string.
func (svc *s3Impl) ObjectName(url string) string {
	return objectName(url, svc.domain, svc.api+"/"+svc.bucket)
}

func objectName(url string, bases ...string) string {
	for _, base := range bases {
		if base == "" || base == "/" {
			continue
		}

		if rest, ok := strings.CutPrefix(url, base+"/"); ok && rest != "" {
			return path.Base(rest)
		}
	}

	return constant.Empty
}

func contentType(header *multipart.FileHeader) string {
	if value := header.Header.Get(constant.RequestHeaderContentType); value != "" {
		return value
	}

	if value := mime.TypeByExtension(filepath.Ext(header.Filename)); value != "" {
		return value
	}

	return defaultContentType
}
