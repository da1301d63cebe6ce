// Package storage 内存版 Store 实现（用于测试）
package storage

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"library-admin/internal/shared/model"
)

// MockStore 基于内存 map 的 Store 实现
//
// 语义与 mongostore 对齐：读路径返回的 Publication 均已归一化，
// 唯一键冲突返回 ErrDuplicate，缺失实体返回 ErrNotFound。
// 并发安全，供 handler 测试替代真实 MongoDB。
type MockStore struct {
	mu           sync.RWMutex
	users        map[string]*model.User
	authors      map[string]*model.Author
	publications map[string]*model.Publication
}

// NewMockStore 创建空的内存存储
func NewMockStore() *MockStore {
	return &MockStore{
		users:        make(map[string]*model.User),
		authors:      make(map[string]*model.Author),
		publications: make(map[string]*model.Publication),
	}
}

// Ping 实现 Store 接口
func (s *MockStore) Ping(ctx context.Context) error { return nil }

// Close 实现 Store 接口
func (s *MockStore) Close() error { return nil }

// ============================================================================
// UserStore
// ============================================================================

func (s *MockStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicate
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *MockStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *MockStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MockStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MockStore) UpdateUserLastLogin(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	t := at
	u.LastLogin = &t
	return nil
}

func (s *MockStore) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *MockStore) AddFavorite(ctx context.Context, userID, publicationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	// $addToSet 语义：已存在则不重复
	if !slices.Contains(u.Favorites, publicationID) {
		u.Favorites = append(u.Favorites, publicationID)
	}
	return nil
}

func (s *MockStore) RemoveFavorite(ctx context.Context, userID, publicationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.Favorites = slices.DeleteFunc(u.Favorites, func(id string) bool { return id == publicationID })
	return nil
}

func (s *MockStore) ListFavorites(ctx context.Context, userID string) ([]*model.Publication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return []*model.Publication{}, nil
	}
	result := []*model.Publication{}
	for _, id := range u.Favorites {
		if p, ok := s.publications[id]; ok {
			result = append(result, normalizedCopy(p))
		}
	}
	return result, nil
}

func (s *MockStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []*model.User{}
	for _, u := range s.users {
		cp := *u
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (s *MockStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// ============================================================================
// AuthorStore
// ============================================================================

func (s *MockStore) CreateAuthor(ctx context.Context, author *model.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *author
	s.authors[author.ID] = &cp
	return nil
}

func (s *MockStore) UpdateAuthor(ctx context.Context, id string, update AuthorUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.authors[id]
	if !ok {
		return ErrNotFound
	}
	if update.Name != nil {
		a.Name = *update.Name
	}
	if update.Image != nil {
		a.Image = *update.Image
	}
	if update.Profile != nil {
		a.Profile = *update.Profile
	}
	if update.Education != nil {
		a.Education = *update.Education
	}
	if update.Experience != nil {
		a.Experience = *update.Experience
	}
	if update.Skills != nil {
		a.Skills = *update.Skills
	}
	a.UpdatedAt = time.Now()
	return nil
}

func (s *MockStore) DeleteAuthor(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.authors[id]; !ok {
		return ErrNotFound
	}
	delete(s.authors, id)
	return nil
}

func (s *MockStore) GetAuthorByID(ctx context.Context, id string) (*model.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.authors[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (s *MockStore) GetAuthorByName(ctx context.Context, name string) (*model.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.authors {
		if a.Name == name {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MockStore) ListAuthors(ctx context.Context) ([]*model.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []*model.Author{}
	for _, a := range s.authors {
		cp := *a
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *MockStore) CountAuthors(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.authors)), nil
}

// ============================================================================
// PublicationStore
// ============================================================================

func (s *MockStore) CreatePublication(ctx context.Context, pub *model.Publication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *pub
	cp.Authors = slices.Clone(pub.Authors)
	s.publications[pub.ID] = &cp
	return nil
}

func (s *MockStore) UpdatePublication(ctx context.Context, id string, update PublicationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.publications[id]
	if !ok {
		return ErrNotFound
	}
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Authors != nil {
		p.Authors = slices.Clone(update.Authors)
		p.LegacyAuthor = ""
	}
	if update.Category != nil {
		p.Category = *update.Category
	}
	if update.PublishDate != nil {
		p.PublishDate = *update.PublishDate
	}
	if update.PDFFilename != nil {
		p.PDFFilename = *update.PDFFilename
	}
	if update.CoverFilename != nil {
		p.CoverFilename = *update.CoverFilename
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (s *MockStore) DeletePublication(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.publications[id]; !ok {
		return ErrNotFound
	}
	delete(s.publications, id)
	return nil
}

func (s *MockStore) GetPublicationByID(ctx context.Context, id string) (*model.Publication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.publications[id]; ok {
		return normalizedCopy(p), nil
	}
	return nil, nil
}

func (s *MockStore) ListPublications(ctx context.Context, filter PublicationFilter) ([]*model.Publication, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*model.Publication{}
	for _, p := range s.publications {
		if matchPublication(p, filter) {
			matched = append(matched, normalizedCopy(p))
		}
	}
	sortPublications(matched, filter.Sort)

	total := int64(len(matched))
	page, perPage := filter.Page, filter.PerPage
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = APIDefaultLimit
	}
	start := (page - 1) * perPage
	if start >= len(matched) {
		return []*model.Publication{}, total, nil
	}
	end := min(start+perPage, len(matched))
	return matched[start:end], total, nil
}

func (s *MockStore) SearchPublications(ctx context.Context, q string, page, perPage int) ([]*model.Publication, int64, error) {
	return s.ListPublications(ctx, PublicationFilter{Search: q, Page: page, PerPage: perPage})
}

func (s *MockStore) IncrementViewCount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.publications[id]
	if !ok {
		return ErrNotFound
	}
	p.ViewCount++
	return nil
}

func (s *MockStore) IncrementDownloadCount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.publications[id]
	if !ok {
		return ErrNotFound
	}
	p.DownloadCount++
	return nil
}

func (s *MockStore) ListPublicationsByAuthor(ctx context.Context, name string, limit int) ([]*model.Publication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []*model.Publication{}
	for _, p := range s.publications {
		if slices.Contains(allAuthors(p), name) {
			result = append(result, normalizedCopy(p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PublishDate > result[j].PublishDate })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MockStore) LatestPublications(ctx context.Context, limit int) ([]*model.Publication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []*model.Publication{}
	for _, p := range s.publications {
		result = append(result, normalizedCopy(p))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PublishDate > result[j].PublishDate })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MockStore) RecentPublications(ctx context.Context, limit int) ([]*model.Publication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []*model.Publication{}
	for _, p := range s.publications {
		result = append(result, normalizedCopy(p))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MockStore) DistinctCategories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	for _, p := range s.publications {
		if p.Category != "" {
			seen[p.Category] = true
		}
	}
	return sortedKeys(seen), nil
}

func (s *MockStore) DistinctPublishDates(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	for _, p := range s.publications {
		if p.PublishDate != "" {
			seen[p.PublishDate] = true
		}
	}
	return sortedKeys(seen), nil
}

func (s *MockStore) AuthorCounts(ctx context.Context) ([]model.AggregateCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int64{}
	for _, p := range s.publications {
		for _, name := range allAuthors(p) {
			counts[name]++
		}
	}
	return aggregateSorted(counts), nil
}

func (s *MockStore) CategoryCounts(ctx context.Context) ([]model.AggregateCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int64{}
	for _, p := range s.publications {
		counts[p.Category]++
	}
	return aggregateSorted(counts), nil
}

func (s *MockStore) YearCounts(ctx context.Context) ([]model.YearCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return yearCountsOf(s.publications, ""), nil
}

func (s *MockStore) YearCountsByAuthor(ctx context.Context, name string) ([]model.YearCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return yearCountsOf(s.publications, name), nil
}

func (s *MockStore) CountPublications(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.publications)), nil
}

func (s *MockStore) MigrateLegacyAuthors(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var migrated int64
	for _, p := range s.publications {
		if len(p.Authors) == 0 && p.LegacyAuthor != "" {
			p.Authors = []string{p.LegacyAuthor}
			p.LegacyAuthor = ""
			p.UpdatedAt = time.Now()
			migrated++
		}
	}
	return migrated, nil
}

// ============================================================================
// 内部辅助
// ============================================================================

// allAuthors 返回文档的全部作者，兼容新旧两种字段形态
func allAuthors(p *model.Publication) []string {
	if len(p.Authors) > 0 {
		return p.Authors
	}
	if p.LegacyAuthor != "" {
		return []string{p.LegacyAuthor}
	}
	return nil
}

func normalizedCopy(p *model.Publication) *model.Publication {
	cp := *p
	cp.Authors = slices.Clone(p.Authors)
	cp.NormalizeAuthors()
	return &cp
}

func matchPublication(p *model.Publication, f PublicationFilter) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hit := strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle)
		for _, a := range allAuthors(p) {
			hit = hit || strings.Contains(strings.ToLower(a), needle)
		}
		if !hit {
			return false
		}
	}
	if f.Author != "" && !slices.Contains(allAuthors(p), f.Author) {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.PublishDate != "" && p.PublishDate != f.PublishDate {
		return false
	}
	return true
}

func sortPublications(pubs []*model.Publication, key string) {
	less := func(i, j int) bool { return pubs[i].Title < pubs[j].Title }
	switch key {
	case "author":
		less = func(i, j int) bool { return firstAuthor(pubs[i]) < firstAuthor(pubs[j]) }
	case "publish_date":
		less = func(i, j int) bool { return pubs[i].PublishDate < pubs[j].PublishDate }
	case "created_at":
		less = func(i, j int) bool { return pubs[i].CreatedAt.Before(pubs[j].CreatedAt) }
	}
	sort.SliceStable(pubs, less)
}

func firstAuthor(p *model.Publication) string {
	if len(p.Authors) > 0 {
		return p.Authors[0]
	}
	return ""
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func aggregateSorted(counts map[string]int64) []model.AggregateCount {
	result := make([]model.AggregateCount, 0, len(counts))
	for k, v := range counts {
		result = append(result, model.AggregateCount{Key: k, Count: v})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

func yearCountsOf(pubs map[string]*model.Publication, author string) []model.YearCount {
	counts := map[int]int64{}
	for _, p := range pubs {
		if author != "" && !slices.Contains(allAuthors(p), author) {
			continue
		}
		t, err := time.Parse(model.PublishDateLayout, p.PublishDate)
		if err != nil {
			continue
		}
		counts[t.Year()]++
	}
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)
	result := make([]model.YearCount, 0, len(years))
	for _, y := range years {
		result = append(result, model.YearCount{Year: y, Count: counts[y]})
	}
	return result
}
