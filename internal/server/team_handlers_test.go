package server

import (
	"fmt"
	"net/http"
	"testing"

	"devcircle/internal/events"
	"devcircle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func userIDOf(t *testing.T, ts *testServer, token string) uint {
	t.Helper()
	var me models.User
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/users/me", token, nil, &me))
	return me.ID
}

func TestTeamMembershipFlow(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	alice := ts.signup(t, "alice")
	bob := ts.signup(t, "bob")
	carol := ts.signup(t, "carol")
	bobID := userIDOf(t, ts, bob)

	var team models.Team
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/teams", alice, TeamRequest{TeamName: "Gophers"}, &team))
	assert.Equal(t, "Gophers", team.Name)
	assert.False(t, team.IsPersonal)

	teamPath := fmt.Sprintf("/api/teams/%d", team.ID)

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, teamPath, "", nil, nil))
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPost, teamPath+"/members", bob, AddMemberRequest{Username: "carol"}, nil))

	var member models.TeamMember
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, teamPath+"/members", alice, AddMemberRequest{Username: "bob"}, &member))
	assert.Equal(t, models.TeamRoleContributor, member.Role)
	assert.Equal(t, bobID, member.UserID)

	// Re-adding keeps the original role.
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, teamPath+"/members", alice, AddMemberRequest{Username: "bob", Role: models.TeamRoleOwner}, &member))
	assert.Equal(t, models.TeamRoleContributor, member.Role)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, teamPath+"/members", alice, AddMemberRequest{Username: "ghost"}, nil))

	var fetched models.Team
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, teamPath, bob, nil, &fetched))
	assert.Len(t, fetched.Members, 2)

	var bobTeams []models.Team
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/teams", bob, nil, &bobTeams))
	require.Len(t, bobTeams, 1)
	assert.Equal(t, team.ID, bobTeams[0].ID)

	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPut, teamPath, bob, TeamRequest{TeamName: "Renamed"}, nil))
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPut, teamPath, alice, TeamRequest{TeamName: "Renamed"}, &fetched))
	assert.Equal(t, "Renamed", fetched.Name)

	// Contributors can attach projects; outsiders cannot.
	name := "Compiler"
	var project models.Project
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/projects", bob, ProjectRequest{TeamID: &team.ID, ProjectName: &name}, &project))
	assert.Equal(t, team.ID, project.TeamID)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPost, "/api/projects", carol, ProjectRequest{TeamID: &team.ID, ProjectName: &name}, nil))

	var teamProjects []models.Project
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, teamPath+"/projects", alice, nil, &teamProjects))
	require.Len(t, teamProjects, 1)

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, fmt.Sprintf("%s/members/%d", teamPath, bobID), alice, nil, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodDelete, teamPath+"/members/nope", alice, nil, nil))

	projectPath := fmt.Sprintf("/api/projects/%d", project.ID)
	desc := "now with generics"
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPut, projectPath, bob, ProjectRequest{Description: &desc}, nil))

	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodDelete, teamPath, bob, nil, nil))
	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, teamPath, alice, nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, teamPath, alice, nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, projectPath, "", nil, nil))

	ts.pub.AssertCalled(t, "Publish", mock.Anything, eventOfType(events.TeamCreated))
	ts.pub.AssertCalled(t, "Publish", mock.Anything, eventOfType(events.TeamMemberAdded))
	ts.pub.AssertCalled(t, "Publish", mock.Anything, eventOfType(events.TeamMemberRemoved))
}

func TestProjectEndpoints(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	alice := ts.signup(t, "alice")
	bob := ts.signup(t, "bob")

	name := "Dotfiles"
	stack := []string{" Go ", "", "Postgres"}
	var project models.Project
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/projects", alice, ProjectRequest{ProjectName: &name, TechStack: &stack}, &project))
	assert.Equal(t, []string{"Go", "Postgres"}, project.TechStack)

	var teams []models.Team
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/teams", alice, nil, &teams))
	require.Len(t, teams, 1)
	assert.True(t, teams[0].IsPersonal)
	assert.Equal(t, teams[0].ID, project.TeamID)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/projects", alice, ProjectRequest{}, nil))
	bad := "not a url"
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/projects", alice, ProjectRequest{ProjectName: &name, GitHubRepo: &bad}, nil))

	path := fmt.Sprintf("/api/projects/%d", project.ID)
	desc := "My config"
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPut, path, bob, ProjectRequest{Description: &desc}, nil))
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPut, path, alice, ProjectRequest{Description: &desc}, &project))
	assert.Equal(t, desc, project.Description)
	assert.Equal(t, name, project.ProjectName)

	var mine []models.Project
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/projects/mine", alice, nil, &mine))
	require.Len(t, mine, 1)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/projects/mine", bob, nil, &mine))
	assert.Empty(t, mine)

	var all []models.Project
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/projects", "", nil, &all))
	assert.Len(t, all, 1)

	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodDelete, path, bob, nil, nil))
	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, path, alice, nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, path, "", nil, nil))
}
