package disk

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryDisk struct {
	objects map[string][]byte
	putErr  error
}

func newMemoryDisk() *memoryDisk {
	return &memoryDisk{objects: make(map[string][]byte)}
}

func (m *memoryDisk) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memoryDisk) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryDisk) URL(ctx context.Context, key string) (string, error) {
	return "mem://" + key, nil
}

func (m *memoryDisk) Ping(ctx context.Context) error { return nil }

func TestNewManagerRequiresRegisteredDefault(t *testing.T) {
	_, err := NewManager("s3", map[string]Disk{"public": newMemoryDisk()})
	assert.ErrorIs(t, err, ErrUnknownDisk)
}

func TestManagerWritesToDefaultDiskUnderNamespace(t *testing.T) {
	public := newMemoryDisk()
	other := newMemoryDisk()
	m, err := NewManager("public", map[string]Disk{"public": public, "minio": other})
	require.NoError(t, err)

	loc, err := m.Write(context.Background(), "media", Object{
		Content:     strings.NewReader("payload"),
		Size:        7,
		ContentType: "image/png",
		Extension:   ".png",
	})
	require.NoError(t, err)

	assert.Equal(t, "public", loc.Disk)
	assert.True(t, strings.HasPrefix(loc.Key, "media/"), loc.Key)
	assert.True(t, strings.HasSuffix(loc.Key, ".png"), loc.Key)
	assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(loc.Key, "media/"), ".png"), 32)
	assert.Equal(t, []byte("payload"), public.objects[loc.Key])
	assert.Empty(t, other.objects)
}

func TestManagerGeneratesDistinctKeys(t *testing.T) {
	m, err := NewManager("public", map[string]Disk{"public": newMemoryDisk()})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		loc, err := m.Write(context.Background(), "media", Object{Content: strings.NewReader("x"), Size: 1})
		require.NoError(t, err)
		require.False(t, seen[loc.Key], "duplicate key %s", loc.Key)
		seen[loc.Key] = true
	}
}

func TestManagerWrapsDiskErrors(t *testing.T) {
	public := newMemoryDisk()
	public.putErr = errors.New("disk full")
	m, err := NewManager("public", map[string]Disk{"public": public})
	require.NoError(t, err)

	_, err = m.Write(context.Background(), "media", Object{Content: strings.NewReader("x"), Size: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestManagerURLResolvesNamedDisk(t *testing.T) {
	m, err := NewManager("public", map[string]Disk{"public": newMemoryDisk(), "minio": newMemoryDisk()})
	require.NoError(t, err)

	u, err := m.URL(context.Background(), "minio", "media/a.mp4")
	require.NoError(t, err)
	assert.Equal(t, "mem://media/a.mp4", u)

	_, err = m.URL(context.Background(), "gone", "media/a.mp4")
	assert.ErrorIs(t, err, ErrUnknownDisk)
}
