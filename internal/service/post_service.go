package service

import (
	"context"
	"strings"

	"devcircle/internal/authz"
	"devcircle/internal/events"
	"devcircle/internal/models"
	"devcircle/internal/observability"
	"devcircle/internal/repository"
	"devcircle/internal/validation"
)

type PostService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	publisher events.Publisher
}

type CreatePostInput struct {
	Title    string
	BodyText string
	MediaURL []string
}

// UpdatePostInput replaces title and body only when non-blank. MediaURL is
// replaced only when non-nil; an empty slice clears it.
type UpdatePostInput struct {
	PostID   uint
	Title    string
	BodyText string
	MediaURL *[]string
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, publisher events.Publisher) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo, publisher: publisher}
}

func (s *PostService) CreatePost(ctx context.Context, actor authz.Principal, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := startSpan(ctx, "post.create", actor.UserID)
	defer func() { observability.EndSpan(span, err) }()

	title, err := validation.RequireText("Title", in.Title, validation.MaxTitleLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	body, err := validation.RequireText("Body text", in.BodyText, validation.MaxPostBodyLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	media := models.NormalizeList(in.MediaURL)
	if err := validation.ValidateMediaURLs(media); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post = &models.Post{
		Title:    title,
		BodyText: body,
		MediaURL: media,
		UserID:   actor.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.PostCreated, actor.UserID, post.ID))
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// ListUserPosts returns username's posts newest first.
func (s *PostService) ListUserPosts(ctx context.Context, username string, page Pagination) ([]*models.Post, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.postRepo.ListByAuthors(ctx, []uint{user.ID}, page.Limit, page.Offset)
}

func (s *PostService) UpdatePost(ctx context.Context, actor authz.Principal, in UpdatePostInput) (post *models.Post, err error) {
	ctx, span := startSpan(ctx, "post.update", actor.UserID, observability.IDAttr("post.id", in.PostID))
	defer func() { observability.EndSpan(span, err) }()

	post, err = s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !authz.CanModifyPost(actor, post) {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		if title, err = validation.RequireText("Title", title, validation.MaxTitleLength); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Title = title
	}
	if body := strings.TrimSpace(in.BodyText); body != "" {
		if body, err = validation.RequireText("Body text", body, validation.MaxPostBodyLength); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.BodyText = body
	}
	if in.MediaURL != nil {
		media := models.NormalizeList(*in.MediaURL)
		if err := validation.ValidateMediaURLs(media); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.MediaURL = media
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.PostUpdated, actor.UserID, post.ID))
	return post, nil
}

// DeletePost removes the post with its likes and comments.
func (s *PostService) DeletePost(ctx context.Context, actor authz.Principal, postID uint) (err error) {
	ctx, span := startSpan(ctx, "post.delete", actor.UserID, observability.IDAttr("post.id", postID))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !authz.CanModifyPost(actor, post) {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	events.Emit(ctx, s.publisher, events.New(events.PostDeleted, actor.UserID, postID))
	return nil
}

// ToggleLike flips the actor's like on the post.
func (s *PostService) ToggleLike(ctx context.Context, actor authz.Principal, postID uint) (state *models.LikeState, err error) {
	ctx, span := startSpan(ctx, "post.like_toggle", actor.UserID, observability.IDAttr("post.id", postID))
	defer func() { observability.EndSpan(span, err) }()

	state, err = s.postRepo.ToggleLike(ctx, actor.UserID, postID)
	if err != nil {
		return nil, err
	}
	s.emitLike(ctx, actor, state)
	return state, nil
}

func (s *PostService) LikePost(ctx context.Context, actor authz.Principal, postID uint) (*models.LikeState, error) {
	state, err := s.postRepo.Like(ctx, actor.UserID, postID)
	if err != nil {
		return nil, err
	}
	s.emitLike(ctx, actor, state)
	return state, nil
}

func (s *PostService) UnlikePost(ctx context.Context, actor authz.Principal, postID uint) (*models.LikeState, error) {
	state, err := s.postRepo.Unlike(ctx, actor.UserID, postID)
	if err != nil {
		return nil, err
	}
	s.emitLike(ctx, actor, state)
	return state, nil
}

func (s *PostService) emitLike(ctx context.Context, actor authz.Principal, state *models.LikeState) {
	t := events.PostUnliked
	if state.Liked {
		t = events.PostLiked
	}
	events.Emit(ctx, s.publisher, events.New(t, actor.UserID, state.PostID).With("likes", state.Likes))
}
