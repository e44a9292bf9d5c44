package service

import (
	"context"
	"strings"

	"devcircle/internal/authz"
	"devcircle/internal/events"
	"devcircle/internal/models"
	"devcircle/internal/observability"
	"devcircle/internal/repository"
	"devcircle/internal/validation"
)

type ProjectService struct {
	projectRepo repository.ProjectRepository
	teamRepo    repository.TeamRepository
	userRepo    repository.UserRepository
	publisher   events.Publisher
}

// ProjectInput doubles as a merge patch on update: nil fields are left alone and
// slices are replaced wholesale.
type ProjectInput struct {
	TeamID      *uint
	ProjectName *string
	Description *string
	TechStack   *[]string
	GitHubRepo  *string
	LiveDemoURL *string
	Screenshots *[]string
}

func NewProjectService(projectRepo repository.ProjectRepository, teamRepo repository.TeamRepository, userRepo repository.UserRepository, publisher events.Publisher) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, teamRepo: teamRepo, userRepo: userRepo, publisher: publisher}
}

// CreateProject attaches the project to in.TeamID, which actor must belong to, or
// to actor's personal team when no team is given.
func (s *ProjectService) CreateProject(ctx context.Context, actor authz.Principal, in ProjectInput) (project *models.Project, err error) {
	ctx, span := startSpan(ctx, "project.create", actor.UserID)
	defer func() { observability.EndSpan(span, err) }()

	if in.ProjectName == nil {
		return nil, models.NewValidationError("Project name is required")
	}

	project = &models.Project{}
	if err := applyProjectPatch(project, in); err != nil {
		return nil, err
	}

	if in.TeamID != nil {
		if _, err := s.teamRepo.GetByID(ctx, *in.TeamID); err != nil {
			return nil, err
		}
		membership, err := s.teamRepo.GetMembership(ctx, *in.TeamID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !authz.CanAttachToTeam(actor, membership) {
			return nil, models.NewForbiddenError("You must be a member of the team to add projects")
		}
		project.TeamID = *in.TeamID
	} else {
		user, err := s.userRepo.GetByID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		team, err := s.teamRepo.EnsurePersonal(ctx, user)
		if err != nil {
			return nil, err
		}
		project.TeamID = team.ID
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.ProjectCreated, actor.UserID, project.ID).With("team_id", project.TeamID))
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

func (s *ProjectService) ListProjects(ctx context.Context, page Pagination) ([]*models.Project, error) {
	return s.projectRepo.List(ctx, page.Limit, page.Offset)
}

// MyProjects lists projects of every team userID belongs to, newest first.
func (s *ProjectService) MyProjects(ctx context.Context, userID uint) ([]*models.Project, error) {
	return s.projectRepo.ListForUser(ctx, userID)
}

func (s *ProjectService) TeamProjects(ctx context.Context, teamID uint) ([]*models.Project, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.projectRepo.ListByTeam(ctx, teamID)
}

func (s *ProjectService) authorizeModify(ctx context.Context, actor authz.Principal, projectID uint) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	membership, err := s.teamRepo.GetMembership(ctx, project.TeamID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !authz.CanModifyProject(actor, membership) {
		return nil, models.NewForbiddenError("You must be a member of the project's team")
	}
	return project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, actor authz.Principal, projectID uint, patch ProjectInput) (project *models.Project, err error) {
	ctx, span := startSpan(ctx, "project.update", actor.UserID, observability.IDAttr("project.id", projectID))
	defer func() { observability.EndSpan(span, err) }()

	project, err = s.authorizeModify(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if patch.TeamID != nil && *patch.TeamID != project.TeamID {
		return nil, models.NewValidationError("A project cannot be moved to another team")
	}
	if err := applyProjectPatch(project, patch); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.ProjectUpdated, actor.UserID, project.ID))
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, actor authz.Principal, projectID uint) (err error) {
	ctx, span := startSpan(ctx, "project.delete", actor.UserID, observability.IDAttr("project.id", projectID))
	defer func() { observability.EndSpan(span, err) }()

	project, err := s.authorizeModify(ctx, actor, projectID)
	if err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, project.ID); err != nil {
		return err
	}

	events.Emit(ctx, s.publisher, events.New(events.ProjectDeleted, actor.UserID, project.ID).With("team_id", project.TeamID))
	return nil
}

func applyProjectPatch(p *models.Project, in ProjectInput) error {
	if in.ProjectName != nil {
		name, err := validation.RequireText("Project name", *in.ProjectName, validation.MaxProjectNameLength)
		if err != nil {
			return models.NewValidationError(err.Error())
		}
		p.ProjectName = name
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.TechStack != nil {
		p.TechStack = models.NormalizeList(*in.TechStack)
	}
	if in.GitHubRepo != nil {
		repo := strings.TrimSpace(*in.GitHubRepo)
		if err := validation.ValidateURL("github_repo", repo); err != nil {
			return models.NewValidationError(err.Error())
		}
		p.GitHubRepo = repo
	}
	if in.LiveDemoURL != nil {
		demo := strings.TrimSpace(*in.LiveDemoURL)
		if err := validation.ValidateURL("live_demo_url", demo); err != nil {
			return models.NewValidationError(err.Error())
		}
		p.LiveDemoURL = demo
	}
	if in.Screenshots != nil {
		shots := models.NormalizeList(*in.Screenshots)
		if err := validation.ValidateMediaURLs(shots); err != nil {
			return models.NewValidationError(err.Error())
		}
		p.Screenshots = shots
	}
	return nil
}
