package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sundaram/internal/common"
)

type fakeS3 struct {
	objects map[string][]byte
	err     error
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &s3.ListObjectsV2Output{}
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
		}
	}
	return out, nil
}

func TestS3Store_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	s := NewS3StoreWithClient(fake, "sundaram")

	require.NoError(t, s.Put(ctx, "users/user_2.json", []byte(`{"id":2}`)))
	require.NoError(t, s.Put(ctx, "users/user_1.json", []byte(`{"id":1}`)))
	require.NoError(t, s.Put(ctx, "history/history_1.json", []byte(`[]`)))

	got, err := s.Get(ctx, "users/user_1.json")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(got))

	ok, err := s.Exists(ctx, "history/history_1.json")
	require.NoError(t, err)
	assert.True(t, ok)

	keys, err := s.List(ctx, "users/")
	require.NoError(t, err)
	assert.Equal(t, []string{"users/user_1.json", "users/user_2.json"}, keys)
}

func TestS3Store_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewS3StoreWithClient(newFakeS3(), "sundaram")

	_, err := s.Get(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	ok, err := s.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3Store_Errors(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	fake.err = errors.New("connection refused")
	s := NewS3StoreWithClient(fake, "sundaram")

	_, err := s.Get(ctx, "k")
	assert.ErrorContains(t, err, "s3 get k")
	assert.ErrorContains(t, s.Put(ctx, "k", nil), "s3 put k")
	_, err = s.Exists(ctx, "k")
	assert.ErrorContains(t, err, "s3 head k")
	_, err = s.List(ctx, "")
	assert.ErrorContains(t, err, "connection refused")
}

func TestNewS3Store_ConfiguresClient(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	var gotRegion string
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		var lo config.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		gotRegion = lo.Region
		return aws.Config{Region: lo.Region}, nil
	}

	var opts s3.Options
	fake := newFakeS3()
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) S3API {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fake
	}

	s, err := NewS3Store(context.Background(), S3Config{
		AccessKey:    "admin",
		SecretKey:    "secret",
		Bucket:       "sundaram",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000",
	})
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", gotRegion)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "sundaram", s.bucket)
}

func TestNewS3Store_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := NewS3Store(context.Background(), S3Config{})
	require.ErrorContains(t, err, "load aws config")
}
