package repository

import (
	"context"

	"devcircle/internal/models"
	"devcircle/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeState, error)
	Like(ctx context.Context, userID, postID uint) (*models.LikeState, error)
	Unlike(ctx context.Context, userID, postID uint) (*models.LikeState, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

const feedOrder = "posts.created_at DESC, posts.id DESC"

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	post.Likes = 0
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return translateError(err, "Post", post.ID)
	}
	return nil
}

// GetByID loads the post with its author and comments oldest first.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.User").
		First(&post, id).Error
	if err != nil {
		return nil, translateError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translateError(err, "Post", id)
	}
	return count > 0, nil
}

// List returns every post newest first.
func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	q := readDB(r.db).WithContext(ctx).Preload("User").Order(feedOrder)
	if err := page(q, limit, offset).Find(&posts).Error; err != nil {
		return nil, translateError(err, "Post", nil)
	}
	return posts, nil
}

// ListByAuthors returns posts written by any of authorIDs newest first.
func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	if len(authorIDs) == 0 {
		return posts, nil
	}
	q := readDB(r.db).WithContext(ctx).
		Preload("User").
		Where("posts.user_id IN ?", authorIDs).
		Order(feedOrder)
	if err := page(q, limit, offset).Find(&posts).Error; err != nil {
		return nil, translateError(err, "Post", nil)
	}
	return posts, nil
}

// Update writes the editable columns. The like counter is never touched here.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(post).
		Select("title", "body_text", "media_url", "updated_at").
		Updates(post)
	if res.Error != nil {
		return translateError(res.Error, "Post", post.ID)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

// Delete removes the post together with its likes and comments.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translateError(err, "Post", id)
}

type likeOp int

const (
	likeToggle likeOp = iota
	likeAdd
	likeRemove
)

// ToggleLike removes the caller's like if present and adds one otherwise.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeState, error) {
	return r.changeLike(ctx, userID, postID, likeToggle)
}

// Like is idempotent: liking twice leaves one row and one count.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (*models.LikeState, error) {
	return r.changeLike(ctx, userID, postID, likeAdd)
}

// Unlike is idempotent.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (*models.LikeState, error) {
	return r.changeLike(ctx, userID, postID, likeRemove)
}

// changeLike keeps posts.likes equal to the number of like rows: the counter
// only moves in the same transaction as a row that was actually inserted or
// deleted.
func (r *postRepository) changeLike(ctx context.Context, userID, postID uint, op likeOp) (*models.LikeState, error) {
	state := &models.LikeState{PostID: postID}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return err
		}

		removed := false
		if op != likeAdd {
			res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
			if res.Error != nil {
				return res.Error
			}
			removed = res.RowsAffected > 0
		}

		switch {
		case removed:
			if err := bumpLikes(tx, postID, -1); err != nil {
				return err
			}
			observability.LikeChanges.WithLabelValues("unliked").Inc()
			state.Liked = false
		case op == likeRemove:
			state.Liked = false
		default:
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
				DoNothing: true,
			}).Omit(clause.Associations).Create(&models.Like{UserID: userID, PostID: postID})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				if err := bumpLikes(tx, postID, 1); err != nil {
					return err
				}
				observability.LikeChanges.WithLabelValues("liked").Inc()
			}
			state.Liked = true
		}

		return tx.Model(&models.Post{}).Select("likes").Where("id = ?", postID).Row().Scan(&state.Likes)
	})
	if err != nil {
		return nil, translateError(err, "Post", postID)
	}
	return state, nil
}

func bumpLikes(tx *gorm.DB, postID uint, delta int) error {
	q := tx.Model(&models.Post{}).Where("id = ?", postID)
	if delta < 0 {
		q = q.Where("likes > 0")
	}
	return q.UpdateColumn("likes", gorm.Expr("likes + ?", delta)).Error
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, translateError(err, "Like", postID)
	}
	return count > 0, nil
}
