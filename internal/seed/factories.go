package seed

import (
	"context"
	"fmt"
	"strings"

	"devcircle/internal/models"
	"devcircle/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plaintext password of every seeded account.
const DefaultPassword = "Passw0rd!seed"

var techChoices = []string{
	"Go", "Rust", "TypeScript", "React", "Svelte", "Postgres", "Redis", "Kafka",
	"Docker", "Kubernetes", "Python", "GraphQL", "gRPC", "Tailwind", "SQLite",
}

// Factory builds fake entities and persists them through the repositories, so
// seeded data obeys the same constraints as API writes.
type Factory struct {
	faker    *gofakeit.Faker
	password string

	users    repository.UserRepository
	follows  repository.FollowRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	teams    repository.TeamRepository
	projects repository.ProjectRepository

	seq int
}

func newFactory(repos repositories, faker *gofakeit.Faker, bcryptCost int) (*Factory, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{
		faker:    faker,
		password: string(hashed),
		users:    repos.users,
		follows:  repos.follows,
		posts:    repos.posts,
		comments: repos.comments,
		teams:    repos.teams,
		projects: repos.projects,
	}, nil
}

// CreateUser persists a user with a unique username. overrides run before the
// insert.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	f.seq++
	username := strings.ToLower(f.faker.Username())
	suffix := fmt.Sprintf("%d", f.seq)
	if len(username)+len(suffix) > 30 {
		username = username[:30-len(suffix)]
	}
	username += suffix

	user := &models.User{
		Username:   username,
		Email:      username + "@example.com",
		Password:   f.password,
		FirstName:  f.faker.FirstName(),
		LastName:   f.faker.LastName(),
		University: f.faker.Company() + " University",
		Bio:        f.faker.Sentence(10),
		Role:       models.RoleUser,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (f *Factory) CreatePost(ctx context.Context, author *models.User) (*models.Post, error) {
	post := &models.Post{
		UserID:   author.ID,
		Title:    strings.TrimSuffix(f.faker.Sentence(5), "."),
		BodyText: f.faker.Paragraph(1, 3, 12, "\n"),
	}
	if f.faker.Number(0, 9) < 4 {
		post.MediaURL = []string{fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID())}
	}
	if err := f.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (f *Factory) CreateComment(ctx context.Context, author *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		PostID: post.ID,
		UserID: author.ID,
		Text:   f.faker.Sentence(8),
	}
	if err := f.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateTeam makes owner the Owner of a new shared team and adds members as
// contributors.
func (f *Factory) CreateTeam(ctx context.Context, owner *models.User, members ...*models.User) (*models.Team, error) {
	team := &models.Team{Name: f.faker.AppName() + " crew"}
	if err := f.teams.CreateWithOwner(ctx, team, owner.ID); err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.ID == owner.ID {
			continue
		}
		if _, _, err := f.teams.AddMember(ctx, team.ID, m.ID, models.TeamRoleContributor); err != nil {
			return nil, err
		}
	}
	return team, nil
}

// CreateProject attaches a project to team, or to owner's personal team when
// team is nil.
func (f *Factory) CreateProject(ctx context.Context, owner *models.User, team *models.Team) (*models.Project, error) {
	if team == nil {
		personal, err := f.teams.EnsurePersonal(ctx, owner)
		if err != nil {
			return nil, err
		}
		team = personal
	}

	name := f.faker.AppName()
	project := &models.Project{
		TeamID:      team.ID,
		ProjectName: name,
		Description: f.faker.Sentence(12),
		TechStack:   f.pickTech(3),
		GitHubRepo:  fmt.Sprintf("https://github.com/%s/%s", owner.Username, strings.ToLower(strings.ReplaceAll(name, " ", "-"))),
		LiveDemoURL: f.faker.URL(),
	}
	if err := f.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (f *Factory) pickTech(n int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		t := techChoices[f.faker.Number(0, len(techChoices)-1)]
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
