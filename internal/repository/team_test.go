package repository

import (
	"context"
	"sync"
	"testing"

	"devcircle/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRepository_CreateWithOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	team := &models.Team{Name: "Platform"}
	require.NoError(t, repo.CreateWithOwner(ctx, team, alice.ID))
	assert.NotZero(t, team.ID)

	got, err := repo.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Platform", got.Name)
	assert.False(t, got.IsPersonal)
	require.Len(t, got.Members, 1)
	assert.True(t, got.Members[0].IsOwner())
	assert.Equal(t, "alice", got.Members[0].User.Username)

	m, err := repo.GetMembership(ctx, team.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, m.IsOwner())

	m, err = repo.GetMembership(ctx, team.ID, 999)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestTeamRepository_EnsurePersonalConverges(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[uint]struct{}{}
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			team, err := repo.EnsurePersonal(ctx, alice)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids[team.ID] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, ids, 1)

	var teams, members int64
	require.NoError(t, db.Model(&models.Team{}).Where("personal_owner_id = ?", alice.ID).Count(&teams).Error)
	require.NoError(t, db.Model(&models.TeamMember{}).Where("user_id = ?", alice.ID).Count(&members).Error)
	assert.Equal(t, int64(1), teams)
	assert.Equal(t, int64(1), members)

	team, err := repo.EnsurePersonal(ctx, alice)
	require.NoError(t, err)
	assert.True(t, team.IsPersonal)
	assert.Equal(t, PersonalTeamName("alice"), team.Name)
}

func TestTeamRepository_Membership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	team := &models.Team{Name: "Graph"}
	require.NoError(t, repo.CreateWithOwner(ctx, team, alice.ID))

	m, created, err := repo.AddMember(ctx, team.ID, bob.ID, models.TeamRoleContributor)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.TeamRoleContributor, m.Role)

	m, created, err = repo.AddMember(ctx, team.ID, bob.ID, models.TeamRoleOwner)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, models.TeamRoleContributor, m.Role, "existing membership is returned unchanged")

	err = repo.RemoveMember(ctx, team.ID, alice.ID)
	assert.True(t, models.IsCode(err, models.CodeValidation), "sole owner removal: %v", err)

	_, _, err = repo.AddMember(ctx, team.ID, carol.ID, models.TeamRoleOwner)
	require.NoError(t, err)
	require.NoError(t, repo.RemoveMember(ctx, team.ID, alice.ID))

	err = repo.RemoveMember(ctx, team.ID, alice.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	teams, err := repo.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, team.ID, teams[0].ID)

	teams, err = repo.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func TestTeamRepository_UpdateAndDeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)
	projects := NewProjectRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	team := &models.Team{Name: "Old"}
	require.NoError(t, repo.CreateWithOwner(ctx, team, alice.ID))
	require.NoError(t, projects.Create(ctx, &models.Project{TeamID: team.ID, ProjectName: "p1"}))
	require.NoError(t, projects.Create(ctx, &models.Project{TeamID: team.ID, ProjectName: "p2"}))

	team.Name = "New"
	require.NoError(t, repo.Update(ctx, team))
	got, err := repo.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	require.NoError(t, repo.Delete(ctx, team.ID))

	left, err := projects.ListByTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	m, err := repo.GetMembership(ctx, team.ID, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = repo.GetByID(ctx, team.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.True(t, models.IsCode(repo.Delete(ctx, team.ID), models.CodeNotFound))
}

func TestTeamRepository_RemoveMemberLocksOwners(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTeamRepository(db)
	ctx := context.Background()

	lockOwners := `SELECT \* FROM "team_members" WHERE .*ORDER BY user_id FOR UPDATE`
	member := `SELECT \* FROM "team_members" WHERE team_id = \$1 AND user_id = \$2`

	// Another transaction already removed the second Owner, so one row remains locked.
	mock.ExpectBegin()
	mock.ExpectQuery(lockOwners).
		WillReturnRows(sqlmock.NewRows([]string{"team_id", "user_id", "role"}).
			AddRow(7, 1, models.TeamRoleOwner))
	mock.ExpectQuery(member).
		WillReturnRows(sqlmock.NewRows([]string{"team_id", "user_id", "role"}).
			AddRow(7, 1, models.TeamRoleOwner))
	mock.ExpectRollback()

	err := repo.RemoveMember(ctx, 7, 1)
	assert.True(t, models.IsCode(err, models.CodeValidation), "sole owner removal: %v", err)

	mock.ExpectBegin()
	mock.ExpectQuery(lockOwners).
		WillReturnRows(sqlmock.NewRows([]string{"team_id", "user_id", "role"}).
			AddRow(7, 1, models.TeamRoleOwner).
			AddRow(7, 2, models.TeamRoleOwner))
	mock.ExpectQuery(member).
		WillReturnRows(sqlmock.NewRows([]string{"team_id", "user_id", "role"}).
			AddRow(7, 2, models.TeamRoleOwner))
	mock.ExpectExec(`DELETE FROM "team_members" WHERE team_id = \$1 AND user_id = \$2`).
		WithArgs(7, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.RemoveMember(ctx, 7, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
