// internal/s3/uploader.go
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"go-quickstart/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"
)

const defaultPresignTTL = time.Hour

var ErrNotConfigured = errors.New("s3 bucket is not configured")

// API is the subset of *s3.Client the uploader calls.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Object is an uploaded file.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// File is one entry of a batch upload.
type File struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type Uploader struct {
	Client           API
	Bucket           string
	Region           string
	CloudFrontDomain string

	presign presigner
	now     func() time.Time
}

func NewUploader(ctx context.Context, cfg config.S3Config) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(sdkConfig)
	u := NewWithClient(s3Client, cfg)
	u.presign = s3.NewPresignClient(s3Client)
	return u, nil
}

// NewWithClient builds an uploader around an existing client.
func NewWithClient(client API, cfg config.S3Config) *Uploader {
	return &Uploader{
		Client:           client,
		Bucket:           cfg.Bucket,
		Region:           cfg.Region,
		CloudFrontDomain: cfg.CloudFrontDomain,
		now:              time.Now,
	}
}

// ObjectKey names an upload as folder/<unixMillis>_<filename>.
func (u *Uploader) ObjectKey(folder, filename string) string {
	name := strconv.FormatInt(u.now().UnixMilli(), 10) + "_" + path.Base(filename)
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// URL returns the public address of key.
func (u *Uploader) URL(key string) string {
	if u.CloudFrontDomain != "" {
		return fmt.Sprintf("https://%s/%s", u.CloudFrontDomain, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, key)
}

// Upload stores body under a generated key in folder.
func (u *Uploader) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*Object, error) {
	key := u.ObjectKey(folder, filename)
	input := &s3.PutObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := u.Client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return &Object{Key: key, URL: u.URL(key)}, nil
}

// UploadMany uploads files concurrently. Results keep the input order.
func (u *Uploader) UploadMany(ctx context.Context, folder string, files []File) ([]Object, error) {
	objects := make([]Object, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, f := range files {
		g.Go(func() error {
			obj, err := u.Upload(gctx, folder, f.Filename, f.ContentType, f.Body)
			if err != nil {
				return err
			}
			objects[i] = *obj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return objects, nil
}

// PresignGet returns a time-limited download URL. ttl <= 0 means one hour.
func (u *Uploader) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if u.presign == nil {
		return "", ErrNotConfigured
	}
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	req, err := u.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}

func (u *Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (u *Uploader) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	ids := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
	}
	_, err := u.Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(u.Bucket),
		Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to delete %d objects: %w", len(keys), err)
	}
	return nil
}

// List returns every key under prefix.
func (u *Uploader) List(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	p := s3.NewListObjectsV2Paginator(u.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(u.Bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}
