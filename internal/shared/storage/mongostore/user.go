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
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "username", Value: username}})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

func (s *Store) UpdateUserLastLogin(ctx context.Context, id string, at time.Time) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "last_login", Value: at},
	})
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "password_hash", Value: passwordHash},
	})
}

// AddFavorite $addToSet 语义，重复添加不产生多余元素
func (s *Store) AddFavorite(ctx context.Context, userID, publicationID string) error {
	res, err := s.col(ColUsers).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID}},
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "favorites", Value: publicationID}}}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) RemoveFavorite(ctx context.Context, userID, publicationID string) error {
	res, err := s.col(ColUsers).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "favorites", Value: publicationID}}}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ListFavorites(ctx context.Context, userID string) ([]*model.Publication, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || len(user.Favorites) == 0 {
		return []*model.Publication{}, nil
	}
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: user.Favorites}}}}
	pubs, err := findMany[model.Publication](ctx, s.col(ColPublications), filter)
	if err != nil {
		return nil, err
	}
	return normalizeAll(pubs), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{}, opts)
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.col(ColUsers).CountDocuments(ctx, bson.D{})
	return n, wrapError(err)
}
