package s3

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go-quickstart/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string
	failPut bool
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string]string{}} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut {
		return nil, errors.New("access denied")
	}
	body, _ := io.ReadAll(in.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range in.Delete.Objects {
		f.deleted = append(f.deleted, aws.ToString(o.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func newTestUploader(client API, cfg config.S3Config) *Uploader {
	u := NewWithClient(client, cfg)
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return u
}

func TestObjectKeyAndURL(t *testing.T) {
	u := newTestUploader(newFakeS3(), config.S3Config{Bucket: "media", Region: "ap-south-1"})

	assert.Equal(t, "ProfilePhoto/1700000000000_me.png", u.ObjectKey("ProfilePhoto", "me.png"))
	assert.Equal(t, "1700000000000_me.png", u.ObjectKey("", "../../me.png"))
	assert.Equal(t, "https://media.s3.ap-south-1.amazonaws.com/a/b.png", u.URL("a/b.png"))

	u.CloudFrontDomain = "cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/a/b.png", u.URL("a/b.png"))
}

func TestUploadAndList(t *testing.T) {
	fake := newFakeS3()
	u := newTestUploader(fake, config.S3Config{Bucket: "media", Region: "us-east-1"})
	ctx := context.Background()

	obj, err := u.Upload(ctx, "docs", "a.txt", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "docs/1700000000000_a.txt", obj.Key)
	assert.Equal(t, "hello", fake.objects[obj.Key])

	objs, err := u.UploadMany(ctx, "pics", []File{
		{Filename: "x.png", Body: strings.NewReader("x")},
		{Filename: "y.png", Body: strings.NewReader("y")},
	})
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "pics/1700000000000_x.png", objs[0].Key)
	assert.Equal(t, "pics/1700000000000_y.png", objs[1].Key)

	keys, err := u.List(ctx, "pics/")
	require.NoError(t, err)
	assert.Equal(t, []string{"pics/1700000000000_x.png", "pics/1700000000000_y.png"}, keys)
}

func TestUploadError(t *testing.T) {
	fake := newFakeS3()
	fake.failPut = true
	u := newTestUploader(fake, config.S3Config{Bucket: "media"})

	_, err := u.Upload(context.Background(), "f", "a", "", strings.NewReader(""))
	assert.ErrorContains(t, err, "failed to upload file to S3")

	_, err = u.UploadMany(context.Background(), "f", []File{{Filename: "a", Body: strings.NewReader("")}})
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	fake := newFakeS3()
	u := newTestUploader(fake, config.S3Config{Bucket: "media"})
	ctx := context.Background()

	require.NoError(t, u.DeleteMany(ctx, nil))
	assert.Empty(t, fake.deleted)

	require.NoError(t, u.Delete(ctx, "a"))
	require.NoError(t, u.DeleteMany(ctx, []string{"b", "c"}))
	assert.Equal(t, []string{"a", "b", "c"}, fake.deleted)
}

func TestPresignWithoutClient(t *testing.T) {
	u := newTestUploader(newFakeS3(), config.S3Config{Bucket: "media"})
	_, err := u.PresignGet(context.Background(), "a", 0)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewUploaderRequiresBucket(t *testing.T) {
	_, err := NewUploader(context.Background(), config.S3Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
