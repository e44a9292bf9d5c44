// Package seed fills a database with fake but consistent data for local
// development and demos.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"devcircle/internal/database"
	"devcircle/internal/middleware"
	"devcircle/internal/models"
	"devcircle/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control how much data Run creates.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	FollowsPerUser  int
	LikesPerPost    int
	Teams           int
	TeamSize        int
	// Randomness seed; zero picks a random one.
	Seed int64
	// BcryptCost defaults to bcrypt.DefaultCost. Tests use bcrypt.MinCost.
	BcryptCost int
}

// DefaultOptions is a small but well connected community.
func DefaultOptions() Options {
	return Options{
		Users:           25,
		PostsPerUser:    4,
		CommentsPerPost: 2,
		FollowsPerUser:  5,
		LikesPerPost:    3,
		Teams:           5,
		TeamSize:        4,
	}
}

// Summary counts what Run created.
type Summary struct {
	Users    int
	Follows  int
	Posts    int
	Comments int
	Likes    int
	Teams    int
	Projects int
}

type repositories struct {
	users    repository.UserRepository
	follows  repository.FollowRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	teams    repository.TeamRepository
	projects repository.ProjectRepository
}

// Seeder populates the database.
type Seeder struct {
	db   *gorm.DB
	opts Options
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Seeder{db: db, opts: opts}
}

// ClearAll deletes every row of every schema-managed table, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	all := database.PersistentModels()
	slices.Reverse(all)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range all {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}
		return nil
	})
}

// Run creates users, their follow graph, posts with comments and likes, shared
// teams and a project for every user.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	faker := gofakeit.New(s.opts.Seed)
	f, err := newFactory(repositories{
		users:    repository.NewUserRepository(s.db),
		follows:  repository.NewFollowRepository(s.db),
		posts:    repository.NewPostRepository(s.db),
		comments: repository.NewCommentRepository(s.db),
		teams:    repository.NewTeamRepository(s.db),
		projects: repository.NewProjectRepository(s.db),
	}, faker, s.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	sum := &Summary{}

	users := make([]*models.User, 0, s.opts.Users)
	for range s.opts.Users {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	for _, u := range users {
		for _, target := range pick(faker, users, s.opts.FollowsPerUser, u) {
			created, err := f.follows.Follow(ctx, u.ID, target.ID)
			if err != nil {
				return nil, fmt.Errorf("follow: %w", err)
			}
			if created {
				sum.Follows++
			}
		}
	}

	for _, u := range users {
		for range s.opts.PostsPerUser {
			post, err := f.CreatePost(ctx, u)
			if err != nil {
				return nil, fmt.Errorf("create post: %w", err)
			}
			sum.Posts++

			for _, c := range pick(faker, users, s.opts.CommentsPerPost, nil) {
				if _, err := f.CreateComment(ctx, c, post); err != nil {
					return nil, fmt.Errorf("create comment: %w", err)
				}
				sum.Comments++
			}
			for _, l := range pick(faker, users, s.opts.LikesPerPost, u) {
				if _, err := f.posts.Like(ctx, l.ID, post.ID); err != nil {
					return nil, fmt.Errorf("like post: %w", err)
				}
				sum.Likes++
			}
		}
	}

	for range s.opts.Teams {
		owner := users[faker.Number(0, len(users)-1)]
		members := pick(faker, users, s.opts.TeamSize-1, owner)
		team, err := f.CreateTeam(ctx, owner, members...)
		if err != nil {
			return nil, fmt.Errorf("create team: %w", err)
		}
		sum.Teams++
		if _, err := f.CreateProject(ctx, owner, team); err != nil {
			return nil, fmt.Errorf("create team project: %w", err)
		}
		sum.Projects++
	}

	for _, u := range users {
		if _, err := f.CreateProject(ctx, u, nil); err != nil {
			return nil, fmt.Errorf("create personal project: %w", err)
		}
		sum.Projects++
	}

	middleware.Logger.InfoContext(ctx, "database seeded",
		slog.Int("users", sum.Users),
		slog.Int("follows", sum.Follows),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("likes", sum.Likes),
		slog.Int("teams", sum.Teams),
		slog.Int("projects", sum.Projects),
	)
	return sum, nil
}

// pick returns up to n distinct users, never exclude.
func pick(faker *gofakeit.Faker, users []*models.User, n int, exclude *models.User) []*models.User {
	candidates := make([]*models.User, 0, len(users))
	for _, u := range users {
		if exclude == nil || u.ID != exclude.ID {
			candidates = append(candidates, u)
		}
	}
	faker.ShuffleAnySlice(candidates)
	if n < len(candidates) {
		candidates = candidates[:max(n, 0)]
	}
	return candidates
}
