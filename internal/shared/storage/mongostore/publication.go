package mongostore

import (
	"context"
	"log"
	"time"

	"library-admin/internal/shared/model"
	"library-admin/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// PublicationStore
// ============================================================================

func (s *Store) CreatePublication(ctx context.Context, pub *model.Publication) error {
	// 当前写路径只产生 authors 数组文档
	pub.LegacyAuthor = ""
	return insertOne(ctx, s.col(ColPublications), pub)
}

func (s *Store) UpdatePublication(ctx context.Context, id string, update storage.PublicationUpdate) error {
	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	if update.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *update.Title})
	}
	if update.Authors != nil {
		set = append(set, bson.E{Key: "authors", Value: update.Authors})
	}
	if update.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *update.Category})
	}
	if update.PublishDate != nil {
		set = append(set, bson.E{Key: "publish_date", Value: *update.PublishDate})
	}
	if update.PDFFilename != nil {
		set = append(set, bson.E{Key: "pdf_filename", Value: *update.PDFFilename})
	}
	if update.CoverFilename != nil {
		set = append(set, bson.E{Key: "cover_filename", Value: *update.CoverFilename})
	}

	change := bson.D{{Key: "$set", Value: set}}
	if update.Authors != nil {
		// 写入数组后清除旧标量字段，文档收敛到新格式
		change = append(change, bson.E{Key: "$unset", Value: bson.D{{Key: "author", Value: ""}}})
	}

	res, err := s.col(ColPublications).UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, change)
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePublication(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColPublications), id)
}

func (s *Store) GetPublicationByID(ctx context.Context, id string) (*model.Publication, error) {
	pub, err := findOne[model.Publication](ctx, s.col(ColPublications), bson.D{{Key: "_id", Value: id}})
	if err != nil || pub == nil {
		return pub, err
	}
	pub.NormalizeAuthors()
	return pub, nil
}

func (s *Store) ListPublications(ctx context.Context, filter storage.PublicationFilter) ([]*model.Publication, int64, error) {
	query := buildPublicationQuery(filter)

	page, perPage := filter.Page, filter.PerPage
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = storage.APIDefaultLimit
	}

	opts := options.Find().
		SetSort(buildPublicationSort(filter.Sort)).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	pubs, err := findMany[model.Publication](ctx, s.col(ColPublications), query, opts)
	if err != nil {
		return nil, 0, err
	}

	// 总数单独查询，两次读取之间无快照一致性保证
	total, err := s.col(ColPublications).CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, wrapError(err)
	}
	return normalizeAll(pubs), total, nil
}

// SearchPublications 全文搜索，$text 索引不可用时回退到正则搜索
func (s *Store) SearchPublications(ctx context.Context, q string, page, perPage int) ([]*model.Publication, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = storage.APIDefaultLimit
	}

	textQuery := bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: q}}}}
	opts := options.Find().SetSkip(int64((page - 1) * perPage)).SetLimit(int64(perPage))

	pubs, err := findMany[model.Publication](ctx, s.col(ColPublications), textQuery, opts)
	if err == nil {
		total, cerr := s.col(ColPublications).CountDocuments(ctx, textQuery)
		if cerr == nil {
			return normalizeAll(pubs), total, nil
		}
		err = cerr
	}
	log.Printf("[mongostore] text search unavailable, falling back to regex: %v", err)

	return s.ListPublications(ctx, storage.PublicationFilter{Search: q, Page: page, PerPage: perPage})
}

func (s *Store) IncrementViewCount(ctx context.Context, id string) error {
	return incrementField(ctx, s.col(ColPublications), id, "view_count")
}

func (s *Store) IncrementDownloadCount(ctx context.Context, id string) error {
	return incrementField(ctx, s.col(ColPublications), id, "download_count")
}

func (s *Store) ListPublicationsByAuthor(ctx context.Context, name string, limit int) ([]*model.Publication, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "authors", Value: bson.D{{Key: "$in", Value: bson.A{name}}}}},
		bson.D{{Key: "author", Value: name}},
	}}}
	opts := options.Find().SetSort(bson.D{{Key: "publish_date", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	pubs, err := findMany[model.Publication](ctx, s.col(ColPublications), filter, opts)
	if err != nil {
		return nil, err
	}
	return normalizeAll(pubs), nil
}

func (s *Store) LatestPublications(ctx context.Context, limit int) ([]*model.Publication, error) {
	opts := options.Find().SetSort(bson.D{{Key: "publish_date", Value: -1}}).SetLimit(int64(limit))
	pubs, err := findMany[model.Publication](ctx, s.col(ColPublications), bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	return normalizeAll(pubs), nil
}

func (s *Store) RecentPublications(ctx context.Context, limit int) ([]*model.Publication, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))
	pubs, err := findMany[model.Publication](ctx, s.col(ColPublications), bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	return normalizeAll(pubs), nil
}

func (s *Store) DistinctCategories(ctx context.Context) ([]string, error) {
	return s.distinctStrings(ctx, "category")
}

func (s *Store) DistinctPublishDates(ctx context.Context) ([]string, error) {
	return s.distinctStrings(ctx, "publish_date")
}

func (s *Store) distinctStrings(ctx context.Context, field string) ([]string, error) {
	var values []string
	err := s.col(ColPublications).Distinct(ctx, field, bson.D{}).Decode(&values)
	if err != nil {
		return nil, wrapError(err)
	}
	return values, nil
}

func (s *Store) CountPublications(ctx context.Context) (int64, error) {
	n, err := s.col(ColPublications).CountDocuments(ctx, bson.D{})
	return n, wrapError(err)
}

// ============================================================================
// 聚合
// ============================================================================

// allAuthorsProjection 将新旧两种作者字段统一投影为 all_authors 数组
//
//	authors 是数组    -> authors
//	author 非空       -> [author]
//	其余              -> []
var allAuthorsProjection = bson.D{{Key: "$project", Value: bson.D{
	{Key: "all_authors", Value: bson.D{{Key: "$cond", Value: bson.D{
		{Key: "if", Value: bson.D{{Key: "$isArray", Value: "$authors"}}},
		{Key: "then", Value: "$authors"},
		{Key: "else", Value: bson.D{{Key: "$cond", Value: bson.D{
			{Key: "if", Value: bson.D{{Key: "$ne", Value: bson.A{"$author", nil}}}},
			{Key: "then", Value: bson.A{"$author"}},
			{Key: "else", Value: bson.A{}},
		}}}},
	}}}},
}}}

// AuthorCounts 每位作者的出版物数量（展开两种字段形态）
func (s *Store) AuthorCounts(ctx context.Context) ([]model.AggregateCount, error) {
	pipeline := mongo.Pipeline{
		allAuthorsProjection,
		{{Key: "$unwind", Value: "$all_authors"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$all_authors"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	return aggregate[model.AggregateCount](ctx, s.col(ColPublications), pipeline)
}

// CategoryCounts 每个分类的出版物数量
func (s *Store) CategoryCounts(ctx context.Context) ([]model.AggregateCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	return aggregate[model.AggregateCount](ctx, s.col(ColPublications), pipeline)
}

// yearGroupStages 按出版年份分组的公共管道尾部
var yearGroupStages = mongo.Pipeline{
	{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: bson.D{{Key: "$year", Value: bson.D{
			{Key: "$dateFromString", Value: bson.D{{Key: "dateString", Value: "$publish_date"}}},
		}}}},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}},
	{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
}

// YearCounts 按出版年份的出版物数量
func (s *Store) YearCounts(ctx context.Context) ([]model.YearCount, error) {
	return aggregate[model.YearCount](ctx, s.col(ColPublications), yearGroupStages)
}

// YearCountsByAuthor 指定作者按出版年份的出版物数量
func (s *Store) YearCountsByAuthor(ctx context.Context, name string) ([]model.YearCount, error) {
	match := bson.D{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "authors", Value: bson.D{{Key: "$in", Value: bson.A{name}}}}},
		bson.D{{Key: "author", Value: name}},
	}}}}}
	pipeline := append(mongo.Pipeline{match}, yearGroupStages...)
	return aggregate[model.YearCount](ctx, s.col(ColPublications), pipeline)
}

// ============================================================================
// 迁移
// ============================================================================

// MigrateLegacyAuthors 将仅有旧 author 标量字段的文档迁移为 authors 数组
//
// 启动期调用一次，幂等：已有 authors 数组的文档不会被触碰。
func (s *Store) MigrateLegacyAuthors(ctx context.Context) (int64, error) {
	filter := bson.D{
		{Key: "author", Value: bson.D{{Key: "$exists", Value: true}, {Key: "$ne", Value: ""}}},
		{Key: "authors", Value: bson.D{{Key: "$exists", Value: false}}},
	}
	// 管道式更新：authors = [author]
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "authors", Value: bson.A{"$author"}},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	}
	res, err := s.col(ColPublications).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, wrapError(err)
	}
	return res.ModifiedCount, nil
}

// normalizeAll 对一页读取结果统一应用新旧作者字段归一化
func normalizeAll(pubs []*model.Publication) []*model.Publication {
	for _, p := range pubs {
		p.NormalizeAuthors()
	}
	return pubs
}
