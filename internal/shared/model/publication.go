package model

import "time"

// PublishDateLayout 出版日期的存储格式
const PublishDateLayout = "2006-01-02"

// Publication 出版物
//
// 历史数据携带标量 author 字段，新数据携带 authors 数组。
// 两种形态都能透明解码：存储层读出文档后调用 NormalizeAuthors，
// 上层只依赖 Authors 数组，author 字段绝不出现在 JSON 输出中。
type Publication struct {
	ID            string   `json:"id" bson:"_id"`
	Title         string   `json:"title" bson:"title"`
	Authors       []string `json:"authors" bson:"authors,omitempty"`
	LegacyAuthor  string   `json:"-" bson:"author,omitempty"`
	Category      string   `json:"category" bson:"category"`
	PublishDate   string   `json:"publish_date" bson:"publish_date"` // "YYYY-MM-DD"
	PDFFilename   string   `json:"pdf_filename" bson:"pdf_filename"`
	CoverFilename string   `json:"cover_filename" bson:"cover_filename"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	// 计数器只增不减，通过 $inc 原子递增
	DownloadCount int64 `json:"download_count" bson:"download_count"`
	ViewCount     int64 `json:"view_count" bson:"view_count"`
}

// NormalizeAuthors 统一新旧两种作者字段
//
// 规则：
//   - authors 数组非空时以数组为准
//   - 仅有旧 author 标量时提升为单元素数组
//   - 两者皆空时保证 Authors 为空数组而非 nil
//
// 调用后 LegacyAuthor 一律清空。
func (p *Publication) NormalizeAuthors() {
	if len(p.Authors) == 0 && p.LegacyAuthor != "" {
		p.Authors = []string{p.LegacyAuthor}
	}
	if p.Authors == nil {
		p.Authors = []string{}
	}
	p.LegacyAuthor = ""
}

// AggregateCount 通用聚合计数（按作者名/分类名分组）
type AggregateCount struct {
	Key   string `json:"key" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// YearCount 按出版年份的计数
type YearCount struct {
	Year  int   `json:"year" bson:"_id"`
	Count int64 `json:"count" bson:"count"`
}

// LibraryStats 全库统计快照
type LibraryStats struct {
	TotalPublications int64            `json:"total_publications"`
	TotalAuthors      int64            `json:"total_authors"`
	TotalUsers        int64            `json:"total_users"`
	ByYear            []YearCount      `json:"by_year"`
	ByCategory        []AggregateCount `json:"by_category"`
}
