package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore 本地磁盘实现，root 通常为 "static/uploads"
type LocalStore struct {
	root string
}

// NewLocalStore 创建本地存储并预建各类别子目录
func NewLocalStore(root string) (*LocalStore, error) {
	for _, category := range []string{CategoryPDF, CategoryCover, CategoryAuthor} {
		if err := os.MkdirAll(filepath.Join(root, category), 0o755); err != nil {
			return nil, fmt.Errorf("filestore: create %s dir: %w", category, err)
		}
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) path(category, filename string) string {
	return filepath.Join(s.root, category, SanitizeFilename(filename))
}

func (s *LocalStore) Save(ctx context.Context, category, filename string, r io.Reader, size int64) error {
	dst := s.path(category, filename)
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("filestore: create %s: %w", dst, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("filestore: write %s: %w", dst, err)
	}
	return nil
}

func (s *LocalStore) Open(ctx context.Context, category, filename string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(category, filename))
	if err != nil {
		return nil, fmt.Errorf("filestore: open %s/%s: %w", category, filename, err)
	}
	return f, nil
}

func (s *LocalStore) Remove(ctx context.Context, category, filename string) error {
	err := os.Remove(s.path(category, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore: remove %s/%s: %w", category, filename, err)
	}
	return nil
}

func (s *LocalStore) LocalPath(category, filename string) (string, bool) {
	return s.path(category, filename), true
}
