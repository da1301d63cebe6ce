// Package filestore 上传文件存储抽象
//
// 目录布局固定为 uploads/{pdfs,covers,authors}/<sanitized-filename>，
// 实现：本地磁盘（local.go，默认）与 MinIO 对象存储（minio.go）。
// 同名文件直接覆盖，不做并发保护。
package filestore

import (
	"context"
	"io"
)

// 上传类别，对应 uploads/ 下的子目录
const (
	CategoryPDF    = "pdfs"
	CategoryCover  = "covers"
	CategoryAuthor = "authors"
)

// AllowedExtensions 上传文件扩展名允许列表
var AllowedExtensions = map[string]bool{
	"pdf":  true,
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// Store 上传文件存储接口
type Store interface {
	// Save 写入文件，同名覆盖
	Save(ctx context.Context, category, filename string, r io.Reader, size int64) error
	// Open 读取文件，调用方负责关闭
	Open(ctx context.Context, category, filename string) (io.ReadCloser, error)
	// Remove 删除文件，文件不存在不视为错误
	Remove(ctx context.Context, category, filename string) error
	// LocalPath 返回本地磁盘路径；非本地实现返回 ("", false)
	LocalPath(category, filename string) (string, bool)
}
