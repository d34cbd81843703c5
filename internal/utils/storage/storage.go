package storage

import (
	"context"
	"fmt"

	"github.com/receiptwise/backend/domain"
)

// Storage reads and writes file bytes on a named disk. Receipts record which
// disk holds their image, so every operation is addressed by (disk, key).
type Storage interface {
	Get(ctx context.Context, disk, key string) ([]byte, error)
	Put(ctx context.Context, disk, key string, data []byte, contentType string) error
	Exists(ctx context.Context, disk, key string) (bool, error)
	Delete(ctx context.Context, disk, key string) error

	// PresignPut issues a time-limited upload URL. Only the S3 disk
	// supports this.
	PresignPut(ctx context.Context, disk, key, contentType string) (string, error)
}

// Disk is one storage backend.
type Disk interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Presigner is implemented by disks that can issue presigned upload URLs.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
}

type manager struct {
	disks map[string]Disk
}

func NewManager(disks map[string]Disk) Storage {
	return &manager{disks: disks}
}

func (m *manager) disk(name string) (Disk, error) {
	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("unknown storage disk %q", name)
	}
	return d, nil
}

func (m *manager) Get(ctx context.Context, disk, key string) ([]byte, error) {
	d, err := m.disk(disk)
	if err != nil {
		return nil, &domain.StorageError{Disk: disk, Key: key, Op: "get", Err: err}
	}
	data, err := d.Get(ctx, key)
	if err != nil {
		return nil, &domain.StorageError{Disk: disk, Key: key, Op: "get", Err: err}
	}
	return data, nil
}

func (m *manager) Put(ctx context.Context, disk, key string, data []byte, contentType string) error {
	d, err := m.disk(disk)
	if err != nil {
		return &domain.StorageError{Disk: disk, Key: key, Op: "put", Err: err}
	}
	if err := d.Put(ctx, key, data, contentType); err != nil {
		return &domain.StorageError{Disk: disk, Key: key, Op: "put", Err: err}
	}
	return nil
}

func (m *manager) Exists(ctx context.Context, disk, key string) (bool, error) {
	d, err := m.disk(disk)
	if err != nil {
		return false, &domain.StorageError{Disk: disk, Key: key, Op: "exists", Err: err}
	}
	ok, err := d.Exists(ctx, key)
	if err != nil {
		return false, &domain.StorageError{Disk: disk, Key: key, Op: "exists", Err: err}
	}
	return ok, nil
}

func (m *manager) Delete(ctx context.Context, disk, key string) error {
	d, err := m.disk(disk)
	if err != nil {
		return &domain.StorageError{Disk: disk, Key: key, Op: "delete", Err: err}
	}
	if err := d.Delete(ctx, key); err != nil {
		return &domain.StorageError{Disk: disk, Key: key, Op: "delete", Err: err}
	}
	return nil
}

func (m *manager) PresignPut(ctx context.Context, disk, key, contentType string) (string, error) {
	d, err := m.disk(disk)
	if err != nil {
		return "", &domain.StorageError{Disk: disk, Key: key, Op: "presign", Err: err}
	}
	p, ok := d.(Presigner)
	if !ok {
		return "", &domain.StorageError{Disk: disk, Key: key, Op: "presign",
			Err: fmt.Errorf("disk %q does not support presigned uploads", disk)}
	}
	url, err := p.PresignPut(ctx, key, contentType)
	if err != nil {
		return "", &domain.StorageError{Disk: disk, Key: key, Op: "presign", Err: err}
	}
	return url, nil
}
