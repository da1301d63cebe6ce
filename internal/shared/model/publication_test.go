// Package model 核心数据模型测试
package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPublication_NormalizeAuthors 验证新旧作者字段的统一规则
func TestPublication_NormalizeAuthors(t *testing.T) {
	tests := []struct {
		name   string
		pub    Publication
		expect []string
	}{
		{
			name:   "新格式数组保持不变",
			pub:    Publication{Authors: []string{"Alice", "Bob"}},
			expect: []string{"Alice", "Bob"},
		},
		{
			name:   "旧格式单作者提升为数组",
			pub:    Publication{LegacyAuthor: "Carol"},
			expect: []string{"Carol"},
		},
		{
			name:   "两种字段并存时数组优先",
			pub:    Publication{Authors: []string{"Alice"}, LegacyAuthor: "Carol"},
			expect: []string{"Alice"},
		},
		{
			name:   "历史脏数据保持空数组",
			pub:    Publication{},
			expect: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.pub.NormalizeAuthors()
			assert.Equal(t, tt.expect, tt.pub.Authors)
			assert.Empty(t, tt.pub.LegacyAuthor, "legacy field must be cleared")
		})
	}
}

// TestPublication_NormalizeAuthors_Order 数组格式保持原有顺序
func TestPublication_NormalizeAuthors_Order(t *testing.T) {
	pub := Publication{Authors: []string{"Zhang", "Alice", "Ma"}}
	pub.NormalizeAuthors()
	require.Len(t, pub.Authors, 3)
	assert.Equal(t, []string{"Zhang", "Alice", "Ma"}, pub.Authors)
}

// TestPublication_JSON 旧 author 字段不出现在 JSON 输出中
func TestPublication_JSON(t *testing.T) {
	pub := Publication{
		ID:           "pub-abc123",
		Title:        "Water Resources Review",
		LegacyAuthor: "Carol",
		Category:     "Hydrology",
		PublishDate:  "2023-05-01",
	}
	pub.NormalizeAuthors()

	data, err := json.Marshal(pub)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))

	assert.NotContains(t, out, "author")
	assert.Equal(t, []interface{}{"Carol"}, out["authors"])
	assert.Equal(t, "2023-05-01", out["publish_date"])
}
