package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	key         string
	bucket      string
	contentType string
	body        []byte
	err         error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.key = aws.ToString(in.Key)
	f.bucket = aws.ToString(in.Bucket)
	f.contentType = aws.ToString(in.ContentType)
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader_UploadFootprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "footprint_20240309_140506.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0644))

	put := &fakePutter{}
	u := &S3Uploader{client: put, cfg: S3Config{Bucket: "nyc", Region: "us-east-1"}, prefix: "footprints/"}

	url, err := u.UploadFootprint(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "https://nyc.s3.us-east-1.amazonaws.com/footprints/footprint_20240309_140506.png", url)
	assert.Equal(t, "footprints/footprint_20240309_140506.png", put.key)
	assert.Equal(t, "nyc", put.bucket)
	assert.Equal(t, "image/png", put.contentType)
	assert.Equal(t, []byte("png-bytes"), put.body)
}

func TestS3Uploader_UploadErrors(t *testing.T) {
	u := &S3Uploader{client: &fakePutter{}, cfg: S3Config{Bucket: "nyc"}}
	_, err := u.UploadFootprint(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "f.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	u.client = &fakePutter{err: errors.New("access denied")}
	_, err = u.UploadFootprint(context.Background(), path)
	assert.Error(t, err)
}

func TestS3Uploader_PublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{"aws", S3Config{Bucket: "b", Region: "us-east-1"}, "https://b.s3.us-east-1.amazonaws.com/k.png"},
		{"spaces", S3Config{Bucket: "b", Endpoint: "https://nyc3.digitaloceanspaces.com"}, "https://b.nyc3.digitaloceanspaces.com/k.png"},
		{"minio", S3Config{Bucket: "b", Endpoint: "http://localhost:9000/"}, "http://localhost:9000/b/k.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &S3Uploader{cfg: tt.cfg}
			assert.Equal(t, tt.want, u.PublicURL("k.png"))
		})
	}
}

func TestS3Config_Enabled(t *testing.T) {
	assert.False(t, S3Config{}.Enabled())
	assert.True(t, S3Config{Bucket: "b"}.Enabled())
}
