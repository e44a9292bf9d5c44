package service

import (
	"context"
	"time"

	"devcircle/internal/models"
	"devcircle/internal/observability"
	"devcircle/internal/repository"
)

// FeedService builds the recency-ordered post feeds. Both feeds are pure reads.
type FeedService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
}

func NewFeedService(postRepo repository.PostRepository, followRepo repository.FollowRepository) *FeedService {
	return &FeedService{postRepo: postRepo, followRepo: followRepo}
}

// GlobalFeed returns every post, newest first.
func (s *FeedService) GlobalFeed(ctx context.Context, page Pagination) ([]*models.Post, error) {
	defer observability.ObserveSince(observability.FeedBuilds, time.Now(), "global")
	return s.postRepo.List(ctx, page.Limit, page.Offset)
}

// FollowingFeed returns posts by userID and everyone userID follows.
func (s *FeedService) FollowingFeed(ctx context.Context, userID uint, page Pagination) (posts []*models.Post, err error) {
	ctx, span := startSpan(ctx, "feed.following", userID)
	defer func() { observability.EndSpan(span, err) }()
	defer observability.ObserveSince(observability.FeedBuilds, time.Now(), "following")

	ids, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	authors := append([]uint{userID}, ids...)
	return s.postRepo.ListByAuthors(ctx, authors, page.Limit, page.Offset)
}
