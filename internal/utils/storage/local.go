package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// LocalDisk stores files on the local filesystem under a base directory.
// It backs the "public" disk used for direct uploads and email attachments.
type LocalDisk struct {
	baseDir string
}

func NewLocalDisk(baseDir string) *LocalDisk {
	return &LocalDisk{baseDir: baseDir}
}

func (l *LocalDisk) path(key string) string {
	return filepath.Join(l.baseDir, filepath.FromSlash(key))
}

func (l *LocalDisk) Get(_ context.Context, key string) ([]byte, error) {
	return os.ReadFile(l.path(key))
}

func (l *LocalDisk) Put(_ context.Context, key string, data []byte, _ string) error {
	p := l.path(key)
	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}

func (l *LocalDisk) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(l.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (l *LocalDisk) Delete(_ context.Context, key string) error {
	err := os.Remove(l.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
