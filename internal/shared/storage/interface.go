// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/
//   - 初始化时通过依赖注入传入实现
//
// 缓存不在本包：见 cache/ 包。
package storage

import (
	"context"
	"time"

	"library-admin/internal/shared/model"
)

// ============================================================================
// 查询参数
// ============================================================================

// 分页默认值
const (
	WebPageSize      = 9   // 首页固定页大小
	AdminPageSize    = 20  // 后台列表页大小
	APIDefaultLimit  = 20  // API 默认每页条数
	APIMaxLimit      = 100 // API 每页上限
)

// PublicationFilter 出版物列表查询条件
//
// 各条件相互独立，同时出现时按 AND 组合。
// Search 在标题/作者/分类上做大小写不敏感的子串匹配；
// Author 同时命中新 authors 数组与旧 author 标量字段。
type PublicationFilter struct {
	Search      string
	Author      string
	Category    string
	PublishDate string // "YYYY-MM-DD" 精确匹配
	Sort        string // title | author | publish_date | created_at
	Page        int    // 1-based
	PerPage     int
}

// PublicationUpdate 出版物可编辑字段，nil 表示不更新
type PublicationUpdate struct {
	Title         *string
	Authors       []string
	Category      *string
	PublishDate   *string
	PDFFilename   *string
	CoverFilename *string
}

// AuthorUpdate 作者可编辑字段，nil 表示不更新
type AuthorUpdate struct {
	Name       *string
	Image      *string
	Profile    *string
	Education  *string
	Experience *string
	Skills     *string
}

// ============================================================================
// 存储接口
// ============================================================================

// UserStore 用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	AddFavorite(ctx context.Context, userID, publicationID string) error
	RemoveFavorite(ctx context.Context, userID, publicationID string) error
	ListFavorites(ctx context.Context, userID string) ([]*model.Publication, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// AuthorStore 作者存储接口
type AuthorStore interface {
	CreateAuthor(ctx context.Context, author *model.Author) error
	UpdateAuthor(ctx context.Context, id string, update AuthorUpdate) error
	DeleteAuthor(ctx context.Context, id string) error
	GetAuthorByID(ctx context.Context, id string) (*model.Author, error)
	GetAuthorByName(ctx context.Context, name string) (*model.Author, error)
	ListAuthors(ctx context.Context) ([]*model.Author, error)
	CountAuthors(ctx context.Context) (int64, error)
}

// PublicationStore 出版物存储接口
//
// 所有读路径返回的 Publication 均已经过 NormalizeAuthors，
// 调用方只依赖 Authors 数组。
type PublicationStore interface {
	CreatePublication(ctx context.Context, pub *model.Publication) error
	UpdatePublication(ctx context.Context, id string, update PublicationUpdate) error
	DeletePublication(ctx context.Context, id string) error
	GetPublicationByID(ctx context.Context, id string) (*model.Publication, error)

	// ListPublications 返回一页结果与总数。
	// 两次读取之间没有快照一致性保证。
	ListPublications(ctx context.Context, filter PublicationFilter) ([]*model.Publication, int64, error)

	// SearchPublications 全文搜索，无全文索引时实现退化为正则子串搜索
	SearchPublications(ctx context.Context, q string, page, perPage int) ([]*model.Publication, int64, error)

	// 计数器通过原子 $inc 递增，绝不读-改-写
	IncrementViewCount(ctx context.Context, id string) error
	IncrementDownloadCount(ctx context.Context, id string) error

	ListPublicationsByAuthor(ctx context.Context, name string, limit int) ([]*model.Publication, error)
	LatestPublications(ctx context.Context, limit int) ([]*model.Publication, error)
	RecentPublications(ctx context.Context, limit int) ([]*model.Publication, error)

	DistinctCategories(ctx context.Context) ([]string, error)
	DistinctPublishDates(ctx context.Context) ([]string, error)
	AuthorCounts(ctx context.Context) ([]model.AggregateCount, error)
	CategoryCounts(ctx context.Context) ([]model.AggregateCount, error)
	YearCounts(ctx context.Context) ([]model.YearCount, error)
	YearCountsByAuthor(ctx context.Context, name string) ([]model.YearCount, error)
	CountPublications(ctx context.Context) (int64, error)

	// MigrateLegacyAuthors 启动期一次性迁移：
	// 将仅有 author 标量字段的文档转换为 authors 数组
	MigrateLegacyAuthors(ctx context.Context) (int64, error)
}

// Store 持久化存储组合接口
type Store interface {
	UserStore
	AuthorStore
	PublicationStore
	Ping(ctx context.Context) error
	Close() error
}
