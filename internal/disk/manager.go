package disk

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Manager routes writes to the default disk and URL lookups to any registered disk.
type Manager struct {
	disks       map[string]Disk
	defaultDisk string
	newName     func() string
}

// NewManager fixes the default disk at construction; it is never re-read per call.
func NewManager(defaultDisk string, disks map[string]Disk) (*Manager, error) {
	if _, ok := disks[defaultDisk]; !ok {
		return nil, fmt.Errorf("default disk %q: %w", defaultDisk, ErrUnknownDisk)
	}
	registered := make(map[string]Disk, len(disks))
	for name, d := range disks {
		registered[name] = d
	}
	return &Manager{
		disks:       registered,
		defaultDisk: defaultDisk,
		newName:     randomName,
	}, nil
}

// DefaultDisk reports the name every write goes to.
func (m *Manager) DefaultDisk() string {
	return m.defaultDisk
}

// Write stores obj on the default disk under a fresh key inside namespace.
func (m *Manager) Write(ctx context.Context, namespace string, obj Object) (Location, error) {
	if obj.Content == nil {
		return Location{}, fmt.Errorf("write object: nil content")
	}
	key := path.Join(strings.Trim(namespace, "/"), m.newName()+obj.Extension)
	if err := m.disks[m.defaultDisk].Put(ctx, key, obj.Content, obj.Size, obj.ContentType); err != nil {
		return Location{}, fmt.Errorf("disk %s: %w", m.defaultDisk, err)
	}
	return Location{Disk: m.defaultDisk, Key: key}, nil
}

// URL resolves a stored object's public address.
func (m *Manager) URL(ctx context.Context, diskName, key string) (string, error) {
	d, err := m.Disk(diskName)
	if err != nil {
		return "", err
	}
	return d.URL(ctx, key)
}

// Open reads a stored object back.
func (m *Manager) Open(ctx context.Context, diskName, key string) (io.ReadCloser, error) {
	d, err := m.Disk(diskName)
	if err != nil {
		return nil, err
	}
	return d.Open(ctx, key)
}

// Ping checks the default disk.
func (m *Manager) Ping(ctx context.Context) error {
	return m.disks[m.defaultDisk].Ping(ctx)
}

// Disk looks up a registered disk by name.
func (m *Manager) Disk(name string) (Disk, error) {
	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDisk, name)
	}
	return d, nil
}

func randomName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
