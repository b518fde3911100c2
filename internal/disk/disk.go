// Package disk is the storage gateway: named disks that hold uploaded binaries
// and resolve them to public URLs.
package disk

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrUnknownDisk signals a disk name that was never registered.
	ErrUnknownDisk = errors.New("unknown disk")
	// ErrObjectNotFound signals a key with no stored object.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidKey rejects keys that would escape the disk root.
	ErrInvalidKey = errors.New("invalid object key")
)

// Disk is a single durable byte store addressed by key.
type Disk interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	URL(ctx context.Context, key string) (string, error)
	Ping(ctx context.Context) error
}

// Object is the content handed to the gateway for a write.
type Object struct {
	Content     io.Reader
	Size        int64
	ContentType string
	// Extension is appended to the generated key, including the leading dot.
	Extension string
}

// Location addresses a stored object.
type Location struct {
	Disk string
	Key  string
}
