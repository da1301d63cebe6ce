package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"library-admin/internal/shared/filestore"
	"library-admin/internal/thumbnail"
)

// maxUploadSize 上传大小上限
const maxUploadSize = 64 << 20 // 64 MiB

// DefaultCoverFilename 缩略图生成失败时使用的封面
const DefaultCoverFilename = "default_cover.jpg"

// saveUpload 保存 multipart 表单中的一个文件
// 返回清洗后的文件名；字段未提供文件时返回 ("", nil)。
func (h *Handler) saveUpload(r *http.Request, field, category string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", fmt.Errorf("read form file %s: %w", field, err)
	}
	defer file.Close()

	if header.Filename == "" {
		return "", nil
	}
	if !filestore.AllowedFile(header.Filename) {
		return "", fmt.Errorf("file type not allowed: %s", header.Filename)
	}

	name := filestore.SanitizeFilename(header.Filename)
	if err := h.files.Save(r.Context(), category, name, file, header.Size); err != nil {
		return "", fmt.Errorf("save %s/%s: %w", category, name, err)
	}
	return name, nil
}

// generateCover 渲染 PDF 首页生成封面
// 任何失败都回退 default_cover.jpg，不阻断出版物创建。
func (h *Handler) generateCover(ctx context.Context, pdfFilename string) string {
	pdfPath, ok := h.files.LocalPath(filestore.CategoryPDF, pdfFilename)
	if !ok {
		// 非本地后端：取回到临时文件再渲染
		tmp, err := h.fetchToTemp(ctx, filestore.CategoryPDF, pdfFilename)
		if err != nil {
			log.Printf("[web.cover] fetch pdf %s: %v", pdfFilename, err)
			return DefaultCoverFilename
		}
		defer os.Remove(tmp)
		pdfPath = tmp
	}

	outPath := filepath.Join(os.TempDir(), filestore.CoverFilenameFor(pdfFilename))
	if err := thumbnail.Generate(pdfPath, outPath, h.thumbOpts); err != nil {
		log.Printf("[web.cover] generate for %s: %v", pdfFilename, err)
		return DefaultCoverFilename
	}
	defer os.Remove(outPath)

	f, err := os.Open(outPath)
	if err != nil {
		log.Printf("[web.cover] open generated cover: %v", err)
		return DefaultCoverFilename
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		log.Printf("[web.cover] stat generated cover: %v", err)
		return DefaultCoverFilename
	}

	coverName := filestore.CoverFilenameFor(pdfFilename)
	if err := h.files.Save(ctx, filestore.CategoryCover, coverName, f, info.Size()); err != nil {
		log.Printf("[web.cover] save cover %s: %v", coverName, err)
		return DefaultCoverFilename
	}
	return coverName
}

// fetchToTemp 将存储中的文件取回到临时文件，返回路径
func (h *Handler) fetchToTemp(ctx context.Context, category, filename string) (string, error) {
	rc, err := h.files.Open(ctx, category, filename)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "library-*-"+filestore.SanitizeFilename(filename))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := tmp.ReadFrom(rc); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// parseAuthors 逗号分隔的作者输入 -> 去空白的非空切片
func parseAuthors(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			out = append(out, name)
		}
	}
	return out
}
