package filestore

import "testing"

// TestSanitizeFilename 文件名清洗规则
func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"普通文件名不变", "report.pdf", "report.pdf"},
		{"空格转下划线", "annual report 2023.pdf", "annual_report_2023.pdf"},
		{"丢弃路径成分", "../../etc/passwd", "passwd"},
		{"丢弃绝对路径", "/tmp/evil.pdf", "evil.pdf"},
		{"Windows 分隔符", `C:\Users\x\doc.pdf`, "doc.pdf"},
		{"去除特殊字符", "rep@ort!(1).pdf", "report1.pdf"},
		{"去除开头的点", ".hidden.pdf", "hidden.pdf"},
		{"中文等非 ASCII 被剔除", "报告report.pdf", "report.pdf"},
		{"全部非法时回退", "???", "file"},
		{"空输入回退", "", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestAllowedFile 扩展名允许列表
func TestAllowedFile(t *testing.T) {
	tests := []struct {
		filename string
		expected bool
	}{
		{"report.pdf", true},
		{"cover.PNG", true},
		{"photo.jpeg", true},
		{"photo.jpg", true},
		{"anim.gif", true},
		{"script.exe", false},
		{"archive.tar.gz", false},
		{"noext", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := AllowedFile(tt.filename); got != tt.expected {
				t.Errorf("AllowedFile(%q) = %v, want %v", tt.filename, got, tt.expected)
			}
		})
	}
}

func TestCoverFilenameFor(t *testing.T) {
	tests := []struct {
		pdf      string
		expected string
	}{
		{"report.pdf", "report_cover.jpg"},
		{"water.study.pdf", "water.study_cover.jpg"},
		{"noext", "noext_cover.jpg"},
	}

	for _, tt := range tests {
		if got := CoverFilenameFor(tt.pdf); got != tt.expected {
			t.Errorf("CoverFilenameFor(%q) = %q, want %q", tt.pdf, got, tt.expected)
		}
	}
}
