package service

import (
	"context"

	"devcircle/internal/authz"
	"devcircle/internal/events"
	"devcircle/internal/models"
	"devcircle/internal/observability"
	"devcircle/internal/repository"
)

// FollowService maintains the directed follow graph.
type FollowService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	publisher  events.Publisher
}

func NewFollowService(userRepo repository.UserRepository, followRepo repository.FollowRepository, publisher events.Publisher) *FollowService {
	return &FollowService{userRepo: userRepo, followRepo: followRepo, publisher: publisher}
}

// Follow makes actor follow username. Following someone twice is a no-op.
func (s *FollowService) Follow(ctx context.Context, actor authz.Principal, username string) (err error) {
	ctx, span := startSpan(ctx, "follow.create", actor.UserID)
	defer func() { observability.EndSpan(span, err) }()

	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if target.ID == actor.UserID {
		return models.NewValidationError("You cannot follow yourself")
	}

	created, err := s.followRepo.Follow(ctx, actor.UserID, target.ID)
	if err != nil {
		return err
	}
	if !created {
		logNoop(ctx, "already following", uintAttr("follower_id", actor.UserID), uintAttr("following_id", target.ID))
		return nil
	}

	events.Emit(ctx, s.publisher, events.New(events.UserFollowed, actor.UserID, target.ID))
	return nil
}

// Unfollow removes the edge. Unfollowing someone not followed is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, actor authz.Principal, username string) (err error) {
	ctx, span := startSpan(ctx, "follow.delete", actor.UserID)
	defer func() { observability.EndSpan(span, err) }()

	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if target.ID == actor.UserID {
		return models.NewValidationError("You cannot unfollow yourself")
	}

	removed, err := s.followRepo.Unfollow(ctx, actor.UserID, target.ID)
	if err != nil {
		return err
	}
	if !removed {
		logNoop(ctx, "not following", uintAttr("follower_id", actor.UserID), uintAttr("following_id", target.ID))
		return nil
	}

	events.Emit(ctx, s.publisher, events.New(events.UserUnfollowed, actor.UserID, target.ID))
	return nil
}

func (s *FollowService) Followers(ctx context.Context, username string) ([]*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, user.ID)
}

func (s *FollowService) Following(ctx context.Context, username string) ([]*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, user.ID)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followingID)
}
