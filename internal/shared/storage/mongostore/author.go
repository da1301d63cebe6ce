package mongostore

import (
	"context"
	"time"

	"library-admin/internal/shared/model"
	"library-admin/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// AuthorStore
// ============================================================================

func (s *Store) CreateAuthor(ctx context.Context, author *model.Author) error {
	return insertOne(ctx, s.col(ColAuthors), author)
}

func (s *Store) UpdateAuthor(ctx context.Context, id string, update storage.AuthorUpdate) error {
	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	if update.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *update.Name})
	}
	if update.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *update.Image})
	}
	if update.Profile != nil {
		set = append(set, bson.E{Key: "profile", Value: *update.Profile})
	}
	if update.Education != nil {
		set = append(set, bson.E{Key: "education", Value: *update.Education})
	}
	if update.Experience != nil {
		set = append(set, bson.E{Key: "experience", Value: *update.Experience})
	}
	if update.Skills != nil {
		set = append(set, bson.E{Key: "skills", Value: *update.Skills})
	}
	return updateFields(ctx, s.col(ColAuthors), id, set)
}

func (s *Store) DeleteAuthor(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColAuthors), id)
}

func (s *Store) GetAuthorByID(ctx context.Context, id string) (*model.Author, error) {
	return findOne[model.Author](ctx, s.col(ColAuthors), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetAuthorByName(ctx context.Context, name string) (*model.Author, error) {
	return findOne[model.Author](ctx, s.col(ColAuthors), bson.D{{Key: "name", Value: name}})
}

func (s *Store) ListAuthors(ctx context.Context) ([]*model.Author, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findMany[model.Author](ctx, s.col(ColAuthors), bson.D{}, opts)
}

func (s *Store) CountAuthors(ctx context.Context) (int64, error) {
	n, err := s.col(ColAuthors).CountDocuments(ctx, bson.D{})
	return n, wrapError(err)
}
