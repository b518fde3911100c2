package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalDisk stores objects below a root directory and serves them from a public base URL.
type LocalDisk struct {
	root      string
	publicURL string
}

var _ Disk = (*LocalDisk)(nil)

// NewLocalDisk creates the root directory if needed.
func NewLocalDisk(root, publicURL string) (*LocalDisk, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("local disk root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create disk root: %w", err)
	}
	return &LocalDisk{root: root, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Root returns the directory backing the disk.
func (d *LocalDisk) Root() string {
	return d.root
}

// Put writes to a temp file next to the target and renames it into place.
func (d *LocalDisk) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	target, err := d.resolve(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	written, err := io.Copy(tmp, readerWithContext(ctx, r))
	if err != nil {
		tmp.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if size >= 0 && written != size {
		tmp.Close()
		return fmt.Errorf("write object: wrote %d of %d bytes", written, size)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close object: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod object: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("commit object: %w", err)
	}
	return nil
}

func (d *LocalDisk) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	target, err := d.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}

// URL joins the public base URL with the escaped key.
func (d *LocalDisk) URL(ctx context.Context, key string) (string, error) {
	if _, err := d.resolve(key); err != nil {
		return "", err
	}
	escaped := (&url.URL{Path: key}).EscapedPath()
	return d.publicURL + "/" + strings.TrimLeft(escaped, "/"), nil
}

func (d *LocalDisk) Ping(ctx context.Context) error {
	info, err := os.Stat(d.root)
	if err != nil {
		return fmt.Errorf("stat disk root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("disk root %s is not a directory", d.root)
	}
	return nil
}

func (d *LocalDisk) resolve(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean != key || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

// readerWithContext stops a copy once ctx is done, so an abandoned upload fails the write.
func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
