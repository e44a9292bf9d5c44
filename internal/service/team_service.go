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

// TeamService manages teams and their memberships.
type TeamService struct {
	teamRepo  repository.TeamRepository
	userRepo  repository.UserRepository
	publisher events.Publisher
}

type AddMemberInput struct {
	TeamID   uint
	Username string
	Role     string
}

func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository, publisher events.Publisher) *TeamService {
	return &TeamService{teamRepo: teamRepo, userRepo: userRepo, publisher: publisher}
}

// CreateTeam creates a team with actor as its Owner.
func (s *TeamService) CreateTeam(ctx context.Context, actor authz.Principal, name string) (team *models.Team, err error) {
	ctx, span := startSpan(ctx, "team.create", actor.UserID)
	defer func() { observability.EndSpan(span, err) }()

	name, err = validation.RequireText("Team name", name, validation.MaxTeamNameLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	team = &models.Team{Name: name}
	if err := s.teamRepo.CreateWithOwner(ctx, team, actor.UserID); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.TeamCreated, actor.UserID, team.ID))
	return team, nil
}

// EnsurePersonalTeam returns the user's personal team, creating it on first use.
func (s *TeamService) EnsurePersonalTeam(ctx context.Context, userID uint) (*models.Team, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.teamRepo.EnsurePersonal(ctx, user)
}

func (s *TeamService) GetTeam(ctx context.Context, id uint) (*models.Team, error) {
	return s.teamRepo.GetByID(ctx, id)
}

func (s *TeamService) TeamsForUser(ctx context.Context, userID uint) ([]*models.Team, error) {
	return s.teamRepo.ListForUser(ctx, userID)
}

func (s *TeamService) IsOwner(ctx context.Context, teamID, userID uint) (bool, error) {
	m, err := s.teamRepo.GetMembership(ctx, teamID, userID)
	if err != nil {
		return false, err
	}
	return m.IsOwner(), nil
}

func (s *TeamService) IsMember(ctx context.Context, teamID, userID uint) (bool, error) {
	m, err := s.teamRepo.GetMembership(ctx, teamID, userID)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// authorizeManage loads the team and checks actor may manage it.
func (s *TeamService) authorizeManage(ctx context.Context, actor authz.Principal, teamID uint) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	membership, err := s.teamRepo.GetMembership(ctx, teamID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageTeam(actor, membership) {
		return nil, models.NewForbiddenError("Only a team owner can do that")
	}
	return team, nil
}

// AddMember adds username to the team. Re-adding an existing member returns the
// current membership unchanged.
func (s *TeamService) AddMember(ctx context.Context, actor authz.Principal, in AddMemberInput) (member *models.TeamMember, err error) {
	ctx, span := startSpan(ctx, "team.add_member", actor.UserID, observability.IDAttr("team.id", in.TeamID))
	defer func() { observability.EndSpan(span, err) }()

	team, err := s.authorizeManage(ctx, actor, in.TeamID)
	if err != nil {
		return nil, err
	}
	if team.IsPersonal {
		return nil, models.NewValidationError("Personal teams cannot have other members")
	}

	target, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = models.TeamRoleContributor
	}

	member, created, err := s.teamRepo.AddMember(ctx, team.ID, target.ID, role)
	if err != nil {
		return nil, err
	}
	if !created {
		logNoop(ctx, "already a team member", uintAttr("team_id", team.ID), uintAttr("user_id", target.ID))
		return member, nil
	}

	events.Emit(ctx, s.publisher, events.New(events.TeamMemberAdded, actor.UserID, team.ID).
		With("user_id", target.ID).With("role", role))
	return member, nil
}

func (s *TeamService) RemoveMember(ctx context.Context, actor authz.Principal, teamID, userID uint) (err error) {
	ctx, span := startSpan(ctx, "team.remove_member", actor.UserID, observability.IDAttr("team.id", teamID))
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.authorizeManage(ctx, actor, teamID); err != nil {
		return err
	}
	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		return err
	}

	events.Emit(ctx, s.publisher, events.New(events.TeamMemberRemoved, actor.UserID, teamID).With("user_id", userID))
	return nil
}

func (s *TeamService) UpdateTeam(ctx context.Context, actor authz.Principal, teamID uint, name string) (*models.Team, error) {
	team, err := s.authorizeManage(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}
	name, err = validation.RequireText("Team name", name, validation.MaxTeamNameLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	team.Name = name
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.TeamUpdated, actor.UserID, team.ID))
	return team, nil
}

// DeleteTeam removes the team together with its projects and memberships.
func (s *TeamService) DeleteTeam(ctx context.Context, actor authz.Principal, teamID uint) (err error) {
	ctx, span := startSpan(ctx, "team.delete", actor.UserID, observability.IDAttr("team.id", teamID))
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.authorizeManage(ctx, actor, teamID); err != nil {
		return err
	}
	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		return err
	}

	events.Emit(ctx, s.publisher, events.New(events.TeamDeleted, actor.UserID, teamID))
	return nil
}
