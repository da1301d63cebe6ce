package filestore

import (
	"context"
	"io"
	"mime"
	"path/filepath"

	"library-admin/internal/shared/objstore"
)

// MinioStore MinIO 对象存储实现（UPLOAD_BACKEND=minio）
//
// 对象键布局与本地磁盘一致：uploads/{category}/{filename}。
type MinioStore struct {
	client *objstore.Client
}

// NewMinioStore 基于已连接的 objstore 客户端创建存储
func NewMinioStore(client *objstore.Client) *MinioStore {
	return &MinioStore{client: client}
}

func objectKey(category, filename string) string {
	return "uploads/" + category + "/" + SanitizeFilename(filename)
}

func (s *MinioStore) Save(ctx context.Context, category, filename string, r io.Reader, size int64) error {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	return s.client.Upload(ctx, objectKey(category, filename), r, size, contentType)
}

func (s *MinioStore) Open(ctx context.Context, category, filename string) (io.ReadCloser, error) {
	return s.client.Download(ctx, objectKey(category, filename))
}

func (s *MinioStore) Remove(ctx context.Context, category, filename string) error {
	return s.client.Delete(ctx, objectKey(category, filename))
}

func (s *MinioStore) LocalPath(category, filename string) (string, bool) {
	return "", false
}
