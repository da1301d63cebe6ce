package mongostore

import (
	"testing"

	"library-admin/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// TestBuildPublicationQuery 验证查询条件到 MongoDB 过滤表达式的编译规则
func TestBuildPublicationQuery(t *testing.T) {
	tests := []struct {
		name        string
		filter      storage.PublicationFilter
		wantKeys    []string // 顶层键
		wantAndSize int      // $and 分组数量，0 表示无 $and
	}{
		{
			name:     "空条件返回空过滤",
			filter:   storage.PublicationFilter{},
			wantKeys: []string{},
		},
		{
			name:     "仅分类为单谓词",
			filter:   storage.PublicationFilter{Category: "Hydrology"},
			wantKeys: []string{"category"},
		},
		{
			name:     "仅日期为单谓词",
			filter:   storage.PublicationFilter{PublishDate: "2023-05-01"},
			wantKeys: []string{"publish_date"},
		},
		{
			name:     "仅搜索为单个 $or 组",
			filter:   storage.PublicationFilter{Search: "water"},
			wantKeys: []string{"$or"},
		},
		{
			name:     "仅作者为单个 $or 组",
			filter:   storage.PublicationFilter{Author: "Alice"},
			wantKeys: []string{"$or"},
		},
		{
			name:        "多条件组合为顶层 $and",
			filter:      storage.PublicationFilter{Search: "water", Category: "Hydrology"},
			wantKeys:    []string{"$and"},
			wantAndSize: 2,
		},
		{
			name:        "四个条件全部出现",
			filter:      storage.PublicationFilter{Search: "w", Author: "A", Category: "C", PublishDate: "2020-01-01"},
			wantKeys:    []string{"$and"},
			wantAndSize: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := buildPublicationQuery(tt.filter)

			if len(query) != len(tt.wantKeys) {
				t.Fatalf("query has %d top-level keys, want %d: %v", len(query), len(tt.wantKeys), query)
			}
			for i, key := range tt.wantKeys {
				if query[i].Key != key {
					t.Errorf("top-level key[%d] = %q, want %q", i, query[i].Key, key)
				}
			}
			if tt.wantAndSize > 0 {
				groups, ok := query[0].Value.([]bson.D)
				if !ok {
					t.Fatalf("$and value is %T, want []bson.D", query[0].Value)
				}
				if len(groups) != tt.wantAndSize {
					t.Errorf("$and has %d groups, want %d", len(groups), tt.wantAndSize)
				}
			}
		})
	}
}

// TestBuildPublicationQuery_AuthorBothShapes 作者过滤同时命中新旧两种字段形态
func TestBuildPublicationQuery_AuthorBothShapes(t *testing.T) {
	query := buildPublicationQuery(storage.PublicationFilter{Author: "Alice"})

	or, ok := query[0].Value.(bson.A)
	if !ok {
		t.Fatalf("$or value is %T, want bson.A", query[0].Value)
	}
	if len(or) != 2 {
		t.Fatalf("$or has %d branches, want 2", len(or))
	}

	arrayBranch := or[0].(bson.D)
	if arrayBranch[0].Key != "authors" {
		t.Errorf("first branch key = %q, want authors", arrayBranch[0].Key)
	}
	legacyBranch := or[1].(bson.D)
	if legacyBranch[0].Key != "author" {
		t.Errorf("second branch key = %q, want author", legacyBranch[0].Key)
	}
	if legacyBranch[0].Value != "Alice" {
		t.Errorf("legacy branch value = %v, want exact match Alice", legacyBranch[0].Value)
	}
}

// TestBuildPublicationQuery_SearchEscaped 搜索词中的正则元字符被转义为子串语义
func TestBuildPublicationQuery_SearchEscaped(t *testing.T) {
	query := buildPublicationQuery(storage.PublicationFilter{Search: "a.b(c"})

	or := query[0].Value.(bson.A)
	titleBranch := or[0].(bson.D)
	re := titleBranch[0].Value.(bson.D)
	if re[0].Key != "$regex" {
		t.Fatalf("expected $regex, got %q", re[0].Key)
	}
	pattern := re[0].Value.(string)
	if pattern != `a\.b\(c` {
		t.Errorf("pattern = %q, want escaped %q", pattern, `a\.b\(c`)
	}
	if re[1].Key != "$options" || re[1].Value != "i" {
		t.Errorf("regex options = %v %v, want $options i", re[1].Key, re[1].Value)
	}
}

// TestBuildPublicationSort 排序键编译
func TestBuildPublicationSort(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected bson.D
	}{
		{"默认按标题", "", bson.D{{Key: "title", Value: 1}}},
		{"未知键回退标题", "bogus", bson.D{{Key: "title", Value: 1}}},
		{"按日期", "publish_date", bson.D{{Key: "publish_date", Value: 1}}},
		{"按创建时间", "created_at", bson.D{{Key: "created_at", Value: 1}}},
		{"按作者兼顾新旧字段", "author", bson.D{{Key: "authors", Value: 1}, {Key: "author", Value: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildPublicationSort(tt.key)
			if len(got) != len(tt.expected) {
				t.Fatalf("sort = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i].Key != tt.expected[i].Key || got[i].Value != tt.expected[i].Value {
					t.Errorf("sort[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}
