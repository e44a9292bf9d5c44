package server

import (
	"devcircle/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TeamRequest struct {
	TeamName string `json:"team_name"`
}

type AddMemberRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// GetMyTeams handles GET /api/teams
func (s *Server) GetMyTeams(c *fiber.Ctx) error {
	teams, err := s.teams.TeamsForUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(teams)
}

// CreateTeam handles POST /api/teams
func (s *Server) CreateTeam(c *fiber.Ctx) error {
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	var req TeamRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	team, err := s.teams.CreateTeam(c.UserContext(), actor, req.TeamName)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

// GetTeam handles GET /api/teams/:id
func (s *Server) GetTeam(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	team, err := s.teams.GetTeam(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(team)
}

// UpdateTeam handles PUT /api/teams/:id
func (s *Server) UpdateTeam(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	var req TeamRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	team, err := s.teams.UpdateTeam(c.UserContext(), actor, id, req.TeamName)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(team)
}

// DeleteTeam handles DELETE /api/teams/:id
func (s *Server) DeleteTeam(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	if err := s.teams.DeleteTeam(c.UserContext(), actor, id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddTeamMember handles POST /api/teams/:id/members
func (s *Server) AddTeamMember(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	var req AddMemberRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	member, err := s.teams.AddMember(c.UserContext(), actor, service.AddMemberInput{
		TeamID:   id,
		Username: req.Username,
		Role:     req.Role,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(member)
}

// RemoveTeamMember handles DELETE /api/teams/:id/members/:userId
func (s *Server) RemoveTeamMember(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	if err := s.teams.RemoveMember(c.UserContext(), actor, id, userID); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetTeamProjects handles GET /api/teams/:id/projects
func (s *Server) GetTeamProjects(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	projects, err := s.projects.TeamProjects(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(projects)
}
