package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"devcircle/internal/events"
	"devcircle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByLoginFn    func(context.Context, string) (*models.User, error)
	searchFn        func(context.Context, string, int, int) ([]*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	setRoleFn       func(context.Context, uint, models.Role) error
	listByRoleFn    func(context.Context, models.Role) ([]*models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.getByLoginFn(ctx, login)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.User, error) {
	return s.searchFn(ctx, query, limit, offset)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) SetRole(ctx context.Context, id uint, role models.Role) error {
	return s.setRoleFn(ctx, id, role)
}
func (s *userRepoStub) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	return s.listByRoleFn(ctx, role)
}

// usersByName serves GetByUsername and GetByID from a fixed set.
func usersByName(users ...*models.User) *userRepoStub {
	stub := noopUserRepo()
	stub.getByUsernameFn = func(_ context.Context, name string) (*models.User, error) {
		for _, u := range users {
			if u.Username == name {
				return u, nil
			}
		}
		return nil, models.NewNotFoundError("User", name)
	}
	stub.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		for _, u := range users {
			if u.ID == id {
				return u, nil
			}
		}
		return nil, models.NewNotFoundError("User", id)
	}
	return stub
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return &models.User{}, nil },
		getByLoginFn:    func(_ context.Context, _ string) (*models.User, error) { return &models.User{}, nil },
		searchFn:        func(_ context.Context, _ string, _, _ int) ([]*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		setRoleFn:       func(_ context.Context, _ uint, _ models.Role) error { return nil },
		listByRoleFn:    func(_ context.Context, _ models.Role) ([]*models.User, error) { return nil, nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn       func(context.Context, uint, uint) (bool, error)
	unfollowFn     func(context.Context, uint, uint) (bool, error)
	isFollowingFn  func(context.Context, uint, uint) (bool, error)
	followersFn    func(context.Context, uint) ([]*models.User, error)
	followingFn    func(context.Context, uint) ([]*models.User, error)
	followingIDsFn func(context.Context, uint) ([]uint, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.followFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.unfollowFn(ctx, followerID, followingID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint) ([]*models.User, error) {
	return s.followersFn(ctx, userID)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint) ([]*models.User, error) {
	return s.followingFn(ctx, userID)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unfollowFn:     func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isFollowingFn:  func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followersFn:    func(_ context.Context, _ uint) ([]*models.User, error) { return nil, nil },
		followingFn:    func(_ context.Context, _ uint) ([]*models.User, error) { return nil, nil },
		followingIDsFn: func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	existsFn        func(context.Context, uint) (bool, error)
	listFn          func(context.Context, int, int) ([]*models.Post, error)
	listByAuthorsFn func(context.Context, []uint, int, int) ([]*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	deleteFn        func(context.Context, uint) error
	toggleLikeFn    func(context.Context, uint, uint) (*models.LikeState, error)
	likeFn          func(context.Context, uint, uint) (*models.LikeState, error)
	unlikeFn        func(context.Context, uint, uint) (*models.LikeState, error)
	isLikedFn       func(context.Context, uint, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Post, error) {
	return s.listByAuthorsFn(ctx, authorIDs, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeState, error) {
	return s.toggleLikeFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) (*models.LikeState, error) {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) (*models.LikeState, error) {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		existsFn:        func(_ context.Context, _ uint) (bool, error) { return true, nil },
		listFn:          func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		listByAuthorsFn: func(_ context.Context, _ []uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		updateFn:        func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		toggleLikeFn: func(_ context.Context, _, postID uint) (*models.LikeState, error) {
			return &models.LikeState{PostID: postID, Liked: true, Likes: 1}, nil
		},
		likeFn: func(_ context.Context, _, postID uint) (*models.LikeState, error) {
			return &models.LikeState{PostID: postID, Liked: true, Likes: 1}, nil
		},
		unlikeFn: func(_ context.Context, _, postID uint) (*models.LikeState, error) {
			return &models.LikeState{PostID: postID}, nil
		},
		isLikedFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	updateFn     func(context.Context, *models.Comment) error
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return []*models.Comment{}, nil },
		updateFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// teamRepoStub is a stub for repository.TeamRepository.
type teamRepoStub struct {
	createWithOwnerFn func(context.Context, *models.Team, uint) error
	ensurePersonalFn  func(context.Context, *models.User) (*models.Team, error)
	getByIDFn         func(context.Context, uint) (*models.Team, error)
	getMembershipFn   func(context.Context, uint, uint) (*models.TeamMember, error)
	addMemberFn       func(context.Context, uint, uint, string) (*models.TeamMember, bool, error)
	removeMemberFn    func(context.Context, uint, uint) error
	updateFn          func(context.Context, *models.Team) error
	deleteFn          func(context.Context, uint) error
	listForUserFn     func(context.Context, uint) ([]*models.Team, error)
}

func (s *teamRepoStub) CreateWithOwner(ctx context.Context, team *models.Team, ownerID uint) error {
	return s.createWithOwnerFn(ctx, team, ownerID)
}
func (s *teamRepoStub) EnsurePersonal(ctx context.Context, owner *models.User) (*models.Team, error) {
	return s.ensurePersonalFn(ctx, owner)
}
func (s *teamRepoStub) GetByID(ctx context.Context, id uint) (*models.Team, error) {
	return s.getByIDFn(ctx, id)
}
func (s *teamRepoStub) GetMembership(ctx context.Context, teamID, userID uint) (*models.TeamMember, error) {
	return s.getMembershipFn(ctx, teamID, userID)
}
func (s *teamRepoStub) AddMember(ctx context.Context, teamID, userID uint, role string) (*models.TeamMember, bool, error) {
	return s.addMemberFn(ctx, teamID, userID, role)
}
func (s *teamRepoStub) RemoveMember(ctx context.Context, teamID, userID uint) error {
	return s.removeMemberFn(ctx, teamID, userID)
}
func (s *teamRepoStub) Update(ctx context.Context, team *models.Team) error {
	return s.updateFn(ctx, team)
}
func (s *teamRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *teamRepoStub) ListForUser(ctx context.Context, userID uint) ([]*models.Team, error) {
	return s.listForUserFn(ctx, userID)
}

// withMembers makes GetMembership answer from roles keyed by user id.
func (s *teamRepoStub) withMembers(roles map[uint]string) *teamRepoStub {
	s.getMembershipFn = func(_ context.Context, teamID, userID uint) (*models.TeamMember, error) {
		role, ok := roles[userID]
		if !ok {
			return nil, nil
		}
		return &models.TeamMember{TeamID: teamID, UserID: userID, Role: role}, nil
	}
	return s
}

func noopTeamRepo() *teamRepoStub {
	return &teamRepoStub{
		createWithOwnerFn: func(_ context.Context, _ *models.Team, _ uint) error { return nil },
		ensurePersonalFn: func(_ context.Context, u *models.User) (*models.Team, error) {
			return &models.Team{ID: 99, IsPersonal: true, PersonalOwnerID: &u.ID}, nil
		},
		getByIDFn:       func(_ context.Context, id uint) (*models.Team, error) { return &models.Team{ID: id}, nil },
		getMembershipFn: func(_ context.Context, _, _ uint) (*models.TeamMember, error) { return nil, nil },
		addMemberFn: func(_ context.Context, teamID, userID uint, role string) (*models.TeamMember, bool, error) {
			return &models.TeamMember{TeamID: teamID, UserID: userID, Role: role}, true, nil
		},
		removeMemberFn: func(_ context.Context, _, _ uint) error { return nil },
		updateFn:       func(_ context.Context, _ *models.Team) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		listForUserFn:  func(_ context.Context, _ uint) ([]*models.Team, error) { return nil, nil },
	}
}

// projectRepoStub is a stub for repository.ProjectRepository.
type projectRepoStub struct {
	createFn      func(context.Context, *models.Project) error
	getByIDFn     func(context.Context, uint) (*models.Project, error)
	listFn        func(context.Context, int, int) ([]*models.Project, error)
	listForUserFn func(context.Context, uint) ([]*models.Project, error)
	listByTeamFn  func(context.Context, uint) ([]*models.Project, error)
	updateFn      func(context.Context, *models.Project) error
	deleteFn      func(context.Context, uint) error
}

func (s *projectRepoStub) Create(ctx context.Context, project *models.Project) error {
	return s.createFn(ctx, project)
}
func (s *projectRepoStub) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	return s.getByIDFn(ctx, id)
}
func (s *projectRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Project, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *projectRepoStub) ListForUser(ctx context.Context, userID uint) ([]*models.Project, error) {
	return s.listForUserFn(ctx, userID)
}
func (s *projectRepoStub) ListByTeam(ctx context.Context, teamID uint) ([]*models.Project, error) {
	return s.listByTeamFn(ctx, teamID)
}
func (s *projectRepoStub) Update(ctx context.Context, project *models.Project) error {
	return s.updateFn(ctx, project)
}
func (s *projectRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopProjectRepo() *projectRepoStub {
	return &projectRepoStub{
		createFn:      func(_ context.Context, _ *models.Project) error { return nil },
		getByIDFn:     func(_ context.Context, id uint) (*models.Project, error) { return &models.Project{ID: id}, nil },
		listFn:        func(_ context.Context, _, _ int) ([]*models.Project, error) { return nil, nil },
		listForUserFn: func(_ context.Context, _ uint) ([]*models.Project, error) { return nil, nil },
		listByTeamFn:  func(_ context.Context, _ uint) ([]*models.Project, error) { return nil, nil },
		updateFn:      func(_ context.Context, _ *models.Project) error { return nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// assertCode asserts that err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func strPtr(s string) *string { return &s }

func uintPtr(v uint) *uint { return &v }
