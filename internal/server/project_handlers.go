package server

import (
	"devcircle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ProjectRequest doubles as a merge patch on PUT: absent fields are kept.
type ProjectRequest struct {
	TeamID      *uint     `json:"team_id"`
	ProjectName *string   `json:"project_name"`
	Description *string   `json:"description"`
	TechStack   *[]string `json:"tech_stack"`
	GitHubRepo  *string   `json:"github_repo"`
	LiveDemoURL *string   `json:"live_demo_url"`
	Screenshots *[]string `json:"screenshots"`
}

func (r ProjectRequest) input() service.ProjectInput {
	return service.ProjectInput{
		TeamID:      r.TeamID,
		ProjectName: r.ProjectName,
		Description: r.Description,
		TechStack:   r.TechStack,
		GitHubRepo:  r.GitHubRepo,
		LiveDemoURL: r.LiveDemoURL,
		Screenshots: r.Screenshots,
	}
}

// GetProjects handles GET /api/projects
func (s *Server) GetProjects(c *fiber.Ctx) error {
	projects, err := s.projects.ListProjects(c.UserContext(), parsePagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(projects)
}

// GetMyProjects handles GET /api/projects/mine
func (s *Server) GetMyProjects(c *fiber.Ctx) error {
	projects, err := s.projects.MyProjects(c.UserContext(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(projects)
}

// CreateProject handles POST /api/projects
func (s *Server) CreateProject(c *fiber.Ctx) error {
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	var req ProjectRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	project, err := s.projects.CreateProject(c.UserContext(), actor, req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// GetProject handles GET /api/projects/:id
func (s *Server) GetProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	project, err := s.projects.GetProject(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(project)
}

// UpdateProject handles PUT /api/projects/:id
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	var req ProjectRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	project, err := s.projects.UpdateProject(c.UserContext(), actor, id, req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(project)
}

// DeleteProject handles DELETE /api/projects/:id
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.principal(c)
	if err != nil {
		return nil
	}
	if err := s.projects.DeleteProject(c.UserContext(), actor, id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
