package cache

import "time"

// 聚合查询缓存键（确定性，便于精确失效）
const (
	KeyAuthorCounts   = "library:aggregate:authors"
	KeyCategoryCounts = "library:aggregate:categories"
	KeyYearCounts     = "library:aggregate:years"
)

// DefaultTTL 聚合缓存默认过期时间
const DefaultTTL = 5 * time.Minute

// AggregateKeys 出版物变更时需要一并失效的键
var AggregateKeys = []string{KeyAuthorCounts, KeyCategoryCounts, KeyYearCounts}
