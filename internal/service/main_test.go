package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"devcircle/internal/authz"
	"devcircle/internal/database"
	"devcircle/internal/models"
	"devcircle/internal/repository"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "service-test-secret-with-at-least-32-chars"

// testApp wires every service over one in-memory sqlite database.
type testApp struct {
	db        *gorm.DB
	publisher *recordingPublisher
	identity  *IdentityService
	follows   *FollowService
	posts     *PostService
	comments  *CommentService
	teams     *TeamService
	projects  *ProjectService
	feed      *FeedService
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_foreign_keys=1", name)

	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	teams := repository.NewTeamRepository(db)
	projects := repository.NewProjectRepository(db)
	pub := &recordingPublisher{}

	return &testApp{
		db:        db,
		publisher: pub,
		identity:  NewIdentityService(users, follows, pub, testSecret, time.Hour).WithBcryptCost(bcrypt.MinCost),
		follows:   NewFollowService(users, follows, pub),
		posts:     NewPostService(posts, users, pub),
		comments:  NewCommentService(comments, posts, pub),
		teams:     NewTeamService(teams, users, pub),
		projects:  NewProjectService(projects, teams, users, pub),
		feed:      NewFeedService(posts, follows),
	}
}

// signup registers username and returns its principal.
func (a *testApp) signup(t *testing.T, username string) authz.Principal {
	t.Helper()
	res, err := a.identity.Signup(context.Background(), SignupInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "Sup3r$ecretPass",
	})
	require.NoError(t, err)
	return authz.NewPrincipal(res.User)
}

// promote turns an existing user into an Admin.
func (a *testApp) promote(t *testing.T, p authz.Principal) authz.Principal {
	t.Helper()
	require.NoError(t, a.db.Model(&models.User{}).Where("id = ?", p.UserID).Update("role", models.RoleAdmin).Error)
	p.Role = models.RoleAdmin
	return p
}

func (a *testApp) post(t *testing.T, author authz.Principal, title string) *models.Post {
	t.Helper()
	post, err := a.posts.CreatePost(context.Background(), author, CreatePostInput{Title: title, BodyText: title + " body"})
	require.NoError(t, err)
	return post
}

func postTitles(posts []*models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}
