package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fieldworks/fieldsync/internal/client/models"
	"github.com/fieldworks/fieldsync/internal/netx"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	uploadToPresignedURL = netx.UploadToS3PresignedURL
)

// S3Config points the uploader at an S3-compatible bucket (MinIO on
// self-hosted deployments).
type S3Config struct {
	BaseEndpoint string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
}

// S3Uploader uploads attachments straight to the bucket via presigned PUT
// URLs, bypassing the API media endpoint. The durable URL is the bucket
// object URL; the section tag stays on the attachment, never in the key.
type S3Uploader struct {
	cfg S3Config
}

func NewS3Uploader(cfg S3Config) *S3Uploader {
	return &S3Uploader{cfg: cfg}
}

// storageKey places objects under media/<y>/<m>/<d>/<uuid><ext>.
func storageKey(localRef string) string {
	d := time.Now()
	ext := ""
	if idx := strings.LastIndex(localRef, "."); idx >= 0 {
		ext = localRef[idx:]
	}
	return fmt.Sprintf("media/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

func (u *S3Uploader) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(u.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.cfg.AccessKey,
			u.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(u.cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

func (u *S3Uploader) Upload(ctx context.Context, attachments []models.PhotoAttachment) ([]models.PhotoAttachment, error) {
	result := append([]models.PhotoAttachment(nil), attachments...)

	var pending []int
	for i, a := range result {
		if !a.Uploaded() {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return result, nil
	}

	presignClient, err := u.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	// Presign and PUT each pending item; the first failure aborts the
	// whole batch with no partial result.
	urls := make([]string, len(pending))
	for j, i := range pending {
		data, err := readFile(result[i].LocalRef)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrUploadFailed, result[i].LocalRef, err)
		}

		bucket := u.cfg.Bucket
		key := storageKey(result[i].LocalRef)
		req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
			Bucket: &bucket,
			Key:    &key,
		}, s3.WithPresignExpires(15*time.Minute))
		if err != nil {
			return nil, fmt.Errorf("%w: presign %s: %v", ErrUploadFailed, result[i].LocalRef, err)
		}

		if err := uploadToPresignedURL(req.URL, data); err != nil {
			return nil, fmt.Errorf("%w: put %s: %v", ErrUploadFailed, result[i].LocalRef, err)
		}

		urls[j] = fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.cfg.BaseEndpoint, "/"), bucket, key)
	}

	for j, i := range pending {
		result[i].RemoteURL = urls[j]
	}
	return result, nil
}
