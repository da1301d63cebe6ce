package mongostore

import (
	"regexp"

	"library-admin/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// buildPublicationQuery 将列表查询条件编译为 MongoDB 过滤表达式
//
// 每个条件编译为一个独立的谓词组，多组之间用顶层 $and 组合：
//   - search: 标题/作者/分类上的大小写不敏感子串匹配（$or 组）
//   - author: 新 authors 数组成员匹配 或 旧 author 标量精确匹配（$or 组）
//   - category / publish_date: 精确匹配
//
// 搜索词先经 QuoteMeta 转义，保证是子串语义而非任意正则。
func buildPublicationQuery(f storage.PublicationFilter) bson.D {
	var parts []bson.D

	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		re := bson.D{{Key: "$regex", Value: pattern}, {Key: "$options", Value: "i"}}
		parts = append(parts, bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "authors", Value: re}},
			bson.D{{Key: "author", Value: re}}, // 旧格式兼容
			bson.D{{Key: "category", Value: re}},
		}}})
	}

	if f.Author != "" {
		parts = append(parts, bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "authors", Value: bson.D{{Key: "$in", Value: bson.A{f.Author}}}}},
			bson.D{{Key: "author", Value: f.Author}}, // 旧格式兼容
		}}})
	}

	if f.Category != "" {
		parts = append(parts, bson.D{{Key: "category", Value: f.Category}})
	}

	if f.PublishDate != "" {
		parts = append(parts, bson.D{{Key: "publish_date", Value: f.PublishDate}})
	}

	switch len(parts) {
	case 0:
		return bson.D{}
	case 1:
		return parts[0]
	default:
		return bson.D{{Key: "$and", Value: parts}}
	}
}

// buildPublicationSort 将排序键编译为 MongoDB 排序表达式
//
// 按作者排序需要同时覆盖新旧两种字段形态：
// MongoDB 对数组字段按首元素排序，旧文档回退到 author 标量。
func buildPublicationSort(key string) bson.D {
	switch key {
	case "author":
		return bson.D{{Key: "authors", Value: 1}, {Key: "author", Value: 1}}
	case "publish_date":
		return bson.D{{Key: "publish_date", Value: 1}}
	case "created_at":
		return bson.D{{Key: "created_at", Value: 1}}
	default:
		return bson.D{{Key: "title", Value: 1}}
	}
}
