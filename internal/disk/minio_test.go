package disk

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectClient struct {
	putBucket, putKey, putType string
	putBody                    []byte
	statErr                    error
	bucketExists               bool
	presignTTL                 time.Duration
}

func (f *fakeObjectClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.putBucket, f.putKey, f.putType, f.putBody = bucketName, objectName, opts.ContentType, data
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeObjectClient) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error) {
	return nil, nil
}

func (f *fakeObjectClient) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return minio.ObjectInfo{}, f.statErr
}

func (f *fakeObjectClient) PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	f.presignTTL = expires
	return url.Parse("https://minio.local/" + bucketName + "/" + objectName + "?X-Amz-Signature=abc")
}

func (f *fakeObjectClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return f.bucketExists, nil
}

func TestMinIODiskPutForwardsContentType(t *testing.T) {
	client := &fakeObjectClient{}
	d := NewMinIODisk(client, "mediadrop", "", time.Hour)

	require.NoError(t, d.Put(context.Background(), "media/x.webm", strings.NewReader("webm!"), 5, "video/webm"))

	assert.Equal(t, "mediadrop", client.putBucket)
	assert.Equal(t, "media/x.webm", client.putKey)
	assert.Equal(t, "video/webm", client.putType)
	assert.Equal(t, []byte("webm!"), client.putBody)
}

func TestMinIODiskPutDetectsTruncation(t *testing.T) {
	d := NewMinIODisk(&fakeObjectClient{}, "mediadrop", "", time.Hour)
	err := d.Put(context.Background(), "media/x.webm", strings.NewReader("ab"), 5, "video/webm")
	assert.Error(t, err)
}

func TestMinIODiskURLUsesPublicBase(t *testing.T) {
	d := NewMinIODisk(&fakeObjectClient{}, "mediadrop", "https://cdn.example/", time.Hour)

	u, err := d.URL(context.Background(), "media/a b.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/mediadrop/media/a%20b.png", u)
}

func TestMinIODiskURLFallsBackToPresign(t *testing.T) {
	client := &fakeObjectClient{}
	d := NewMinIODisk(client, "mediadrop", "", 2*time.Hour)

	u, err := d.URL(context.Background(), "media/a.png")
	require.NoError(t, err)
	assert.Contains(t, u, "X-Amz-Signature")
	assert.Equal(t, 2*time.Hour, client.presignTTL)
}

func TestMinIODiskOpenMissingKey(t *testing.T) {
	client := &fakeObjectClient{statErr: minio.ErrorResponse{Code: "NoSuchKey"}}
	d := NewMinIODisk(client, "mediadrop", "", time.Hour)

	_, err := d.Open(context.Background(), "media/none.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestMinIODiskPing(t *testing.T) {
	client := &fakeObjectClient{}
	d := NewMinIODisk(client, "mediadrop", "", time.Hour)
	assert.Error(t, d.Ping(context.Background()))

	client.bucketExists = true
	assert.NoError(t, d.Ping(context.Background()))
}
