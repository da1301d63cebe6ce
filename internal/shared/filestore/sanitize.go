package filestore

import (
	"path"
	"path/filepath"
	"strings"
)

// SanitizeFilename 清洗上传文件名
//
// 规则：
//   - 丢弃全部路径成分（兼容 / 与 \ 分隔符）
//   - 空格替换为下划线
//   - 仅保留 [A-Za-z0-9._-]
//   - 去掉开头的点和横线（防隐藏文件 / 选项注入）
//
// 清洗后为空时返回 "file"。
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.ReplaceAll(name, " ", "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimLeft(b.String(), ".-")
	if cleaned == "" {
		return "file"
	}
	return cleaned
}

// AllowedFile 文件名是否带有允许列表内的扩展名
func AllowedFile(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return ext != "" && AllowedExtensions[ext]
}

// CoverFilenameFor 根据 PDF 文件名推导生成的封面文件名
// report.pdf -> report_cover.jpg
func CoverFilenameFor(pdfFilename string) string {
	base := strings.TrimSuffix(pdfFilename, filepath.Ext(pdfFilename))
	return base + "_cover.jpg"
}
