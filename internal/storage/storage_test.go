package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCheckName(t *testing.T) {
	for _, ok := range []string{"1-20250101-120000-abcd1234.png", "1-x"} {
		assert.NoError(t, checkName(ok), ok)
	}
	for _, bad := range []string{"", ".", "..", "../1-x.png", "a/b", `a\b`} {
		assert.ErrorIs(t, checkName(bad), ErrInvalidName, bad)
	}
}

func TestLocalStore_PutGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "S3")
	s, err := NewLocalStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.Put(ctx, "1-a.png", "image/png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "1-a.png")), url)

	got, err := s.Get(ctx, "1-a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	_, err = s.Get(ctx, "1-missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "../secret")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Put(ctx, "../escape.png", "image/png", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestLocalStore_DirectoryIsNotAnObject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "1-dir"), 0o755))

	s, err := NewLocalStore(dir)
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "1-dir")
	assert.ErrorIs(t, err, ErrNotFound)
}

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(aws.ToString(in.Bucket), aws.ToString(in.Key), aws.ToString(in.ContentType))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *mockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(aws.ToString(in.Bucket), aws.ToString(in.Key))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func TestS3Store_PutGet(t *testing.T) {
	client := new(mockS3)
	s := NewS3StoreWithClient(client, "images", "uploads/")
	ctx := context.Background()

	client.On("PutObject", "images", "uploads/1-a.png", "image/png").Return(&s3.PutObjectOutput{}, nil).Once()
	url, err := s.Put(ctx, "1-a.png", "image/png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "s3://images/uploads/1-a.png", url)

	client.On("GetObject", "images", "uploads/1-a.png").
		Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte("data")))}, nil).Once()
	got, err := s.Get(ctx, "1-a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	client.On("GetObject", "images", "uploads/1-missing.png").Return(nil, &types.NoSuchKey{}).Once()
	_, err = s.Get(ctx, "1-missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	client.AssertExpectations(t)
}
