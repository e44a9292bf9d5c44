package repository

import (
	"context"

	"devcircle/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository stores the directed follow graph.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]*models.User, error)
	Following(ctx context.Context, userID uint) ([]*models.User, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow inserts the edge. It reports false when the edge already existed.
func (r *followRepository) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	edge := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
			DoNothing: true,
		}).
		Create(edge)
	if res.Error != nil {
		return false, translateError(res.Error, "Follow", followingID)
	}
	return res.RowsAffected == 1, nil
}

// Unfollow removes the edge. It reports false when there was nothing to remove.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, translateError(res.Error, "Follow", followingID)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err, "Follow", followingID)
	}
	return count > 0, nil
}

func (r *followRepository) Followers(ctx context.Context, userID uint) ([]*models.User, error) {
	var users []*models.User
	err := readDB(r.db).WithContext(ctx).
		Joins("JOIN follows f ON f.follower_id = users.id").
		Where("f.following_id = ?", userID).
		Order("f.created_at ASC, users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, translateError(err, "User", userID)
	}
	return users, nil
}

func (r *followRepository) Following(ctx context.Context, userID uint) ([]*models.User, error) {
	var users []*models.User
	err := readDB(r.db).WithContext(ctx).
		Joins("JOIN follows f ON f.following_id = users.id").
		Where("f.follower_id = ?", userID).
		Order("f.created_at ASC, users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, translateError(err, "User", userID)
	}
	return users, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, translateError(err, "User", userID)
	}
	return ids, nil
}
