package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	res, err := store.Upload(ctx, "photos/a.jpg", "image/jpeg", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "/media/photos/a.jpg", res.URL)
	assert.Equal(t, int64(4), res.Size)

	rc, err := store.Download(ctx, "photos/a.jpg")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "data", string(body))

	require.NoError(t, store.Delete(ctx, "photos/a.jpg"))
	require.NoError(t, store.Delete(ctx, "photos/a.jpg"), "deleting twice is fine")

	_, err = store.Download(ctx, "photos/a.jpg")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStoreKeyCannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "/media")
	require.NoError(t, err)

	path, err := store.path("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, root))
}

func TestGenerateAndOptimizedKey(t *testing.T) {
	key := GenerateKey("item_photos", "Shirt.PNG")
	assert.True(t, strings.HasPrefix(key, "item_photos/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, GenerateKey("item_photos", "Shirt.PNG"))

	assert.Equal(t, "optimized/item_photos/a.jpg", OptimizedKey("item_photos/a.png"))
}

func TestDetectImageType(t *testing.T) {
	assert.Equal(t, "image/jpeg", DetectImageType([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	assert.Equal(t, "image/png", DetectImageType([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}))
	assert.Equal(t, "image/webp", DetectImageType([]byte("RIFF\x00\x00\x00\x00WEBPVP8 ")))
	assert.Equal(t, "", DetectImageType([]byte("GIF89a")))
}

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	data, _ := io.ReadAll(in.Body)
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "missing", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := NewS3StoreWithClient(fake, "bucket", "eu-west-1", "")
	ctx := context.Background()

	res, err := store.Upload(ctx, "k.jpg", "image/jpeg", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.eu-west-1.amazonaws.com/k.jpg", res.URL)

	rc, err := store.Download(ctx, "k.jpg")
	require.NoError(t, err)
	rc.Close()

	require.NoError(t, store.Delete(ctx, "k.jpg"))
	_, err = store.Download(ctx, "k.jpg")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	cdn := NewS3StoreWithClient(fake, "bucket", "eu-west-1", "https://cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/k.jpg", cdn.URL("k.jpg"))
}
