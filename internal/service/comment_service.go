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

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	publisher   events.Publisher
}

type CreateCommentInput struct {
	PostID   uint
	Text     string
	MediaURL string
}

type UpdateCommentInput struct {
	PostID    uint
	CommentID uint
	Text      string
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, publisher events.Publisher) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo, publisher: publisher}
}

func (s *CommentService) ensurePost(ctx context.Context, postID uint) error {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

// commentOnPost loads a comment and checks it belongs to postID.
func (s *CommentService) commentOnPost(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return comment, nil
}

func (s *CommentService) CreateComment(ctx context.Context, actor authz.Principal, in CreateCommentInput) (comment *models.Comment, err error) {
	ctx, span := startSpan(ctx, "comment.create", actor.UserID, observability.IDAttr("post.id", in.PostID))
	defer func() { observability.EndSpan(span, err) }()

	text, err := validation.RequireText("Comment text", in.Text, validation.MaxCommentLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	media := strings.TrimSpace(in.MediaURL)
	if err := validation.ValidateURL("media_url", media); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.ensurePost(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment = &models.Comment{
		Text:     text,
		MediaURL: media,
		UserID:   actor.UserID,
		PostID:   in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.CommentCreated, actor.UserID, comment.ID).With("post_id", in.PostID))
	return comment, nil
}

// ListComments returns the post's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *CommentService) UpdateComment(ctx context.Context, actor authz.Principal, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentOnPost(ctx, in.PostID, in.CommentID)
	if err != nil {
		return nil, err
	}
	if !authz.CanModifyComment(actor, comment) {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	text, err := validation.RequireText("Comment text", in.Text, validation.MaxCommentLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment.Text = text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.CommentUpdated, actor.UserID, comment.ID).With("post_id", in.PostID))
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, actor authz.Principal, postID, commentID uint) (err error) {
	ctx, span := startSpan(ctx, "comment.delete", actor.UserID, observability.IDAttr("comment.id", commentID))
	defer func() { observability.EndSpan(span, err) }()

	comment, err := s.commentOnPost(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if !authz.CanModifyComment(actor, comment) {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}

	events.Emit(ctx, s.publisher, events.New(events.CommentDeleted, actor.UserID, commentID).With("post_id", postID))
	return nil
}
