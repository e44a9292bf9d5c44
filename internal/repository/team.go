package repository

import (
	"context"
	"errors"
	"fmt"

	"devcircle/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TeamRepository stores teams and their memberships.
type TeamRepository interface {
	CreateWithOwner(ctx context.Context, team *models.Team, ownerID uint) error
	EnsurePersonal(ctx context.Context, owner *models.User) (*models.Team, error)
	GetByID(ctx context.Context, id uint) (*models.Team, error)
	GetMembership(ctx context.Context, teamID, userID uint) (*models.TeamMember, error)
	AddMember(ctx context.Context, teamID, userID uint, role string) (*models.TeamMember, bool, error)
	RemoveMember(ctx context.Context, teamID, userID uint) error
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id uint) error
	ListForUser(ctx context.Context, userID uint) ([]*models.Team, error)
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

// PersonalTeamName is the display name given to a user's personal team.
func PersonalTeamName(username string) string {
	return fmt.Sprintf("%s's personal team", username)
}

// CreateWithOwner inserts the team and the creator's Owner membership atomically.
func (r *teamRepository) CreateWithOwner(ctx context.Context, team *models.Team, ownerID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(team).Error; err != nil {
			return err
		}
		owner := &models.TeamMember{TeamID: team.ID, UserID: ownerID, Role: models.TeamRoleOwner}
		if err := tx.Omit(clause.Associations).Create(owner).Error; err != nil {
			return err
		}
		team.Members = []*models.TeamMember{owner}
		return nil
	})
	return translateError(err, "Team", team.ID)
}

// EnsurePersonal returns the owner's personal team, creating it on first use.
// Concurrent callers converge on a single team through the unique
// personal_owner_id index.
func (r *teamRepository) EnsurePersonal(ctx context.Context, owner *models.User) (*models.Team, error) {
	var team models.Team
	ownerID := owner.ID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate := &models.Team{
			Name:            PersonalTeamName(owner.Username),
			IsPersonal:      true,
			PersonalOwnerID: &ownerID,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "personal_owner_id"}},
			DoNothing: true,
		}).Omit(clause.Associations).Create(candidate)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			membership := &models.TeamMember{TeamID: candidate.ID, UserID: ownerID, Role: models.TeamRoleOwner}
			if err := tx.Omit(clause.Associations).Create(membership).Error; err != nil {
				return err
			}
		}
		return tx.Where("personal_owner_id = ?", ownerID).First(&team).Error
	})
	if err != nil {
		return nil, translateError(err, "Team", ownerID)
	}
	return &team, nil
}

func (r *teamRepository) GetByID(ctx context.Context, id uint) (*models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("team_members.created_at ASC, team_members.user_id ASC")
		}).
		Preload("Members.User").
		First(&team, id).Error
	if err != nil {
		return nil, translateError(err, "Team", id)
	}
	return &team, nil
}

// GetMembership returns nil without error when userID is not on the team.
func (r *teamRepository) GetMembership(ctx context.Context, teamID, userID uint) (*models.TeamMember, error) {
	var m models.TeamMember
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "TeamMember", userID)
	}
	return &m, nil
}

// AddMember inserts the membership unless it exists. The returned bool reports
// whether a row was created; an existing membership is returned unchanged.
func (r *teamRepository) AddMember(ctx context.Context, teamID, userID uint, role string) (*models.TeamMember, bool, error) {
	var (
		m       models.TeamMember
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Omit(clause.Associations).Create(&models.TeamMember{TeamID: teamID, UserID: userID, Role: role})
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected == 1
		return tx.Where("team_id = ? AND user_id = ?", teamID, userID).First(&m).Error
	})
	if err != nil {
		return nil, false, translateError(err, "TeamMember", userID)
	}
	return &m, created, nil
}

// RemoveMember deletes a membership. The last Owner of a team cannot be removed.
// The team's Owner rows are locked first so concurrent removals serialize.
func (r *teamRepository) RemoveMember(ctx context.Context, teamID, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owners []models.TeamMember
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("team_id = ? AND role = ?", teamID, models.TeamRoleOwner).
			Order("user_id").
			Find(&owners).Error; err != nil {
			return err
		}

		var m models.TeamMember
		if err := tx.Where("team_id = ? AND user_id = ?", teamID, userID).First(&m).Error; err != nil {
			return err
		}
		if m.IsOwner() && len(owners) <= 1 {
			return models.NewValidationError("cannot remove the team's only owner")
		}
		return tx.Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&models.TeamMember{}).Error
	})
	return translateError(err, "TeamMember", userID)
}

func (r *teamRepository) Update(ctx context.Context, team *models.Team) error {
	res := r.db.WithContext(ctx).Model(team).
		Select("team_name", "updated_at").
		Updates(team)
	if res.Error != nil {
		return translateError(res.Error, "Team", team.ID)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Team", team.ID)
	}
	return nil
}

// Delete removes the team with its projects and memberships.
func (r *teamRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&models.Project{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Team{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translateError(err, "Team", id)
}

// ListForUser returns the teams userID belongs to, oldest first.
func (r *teamRepository) ListForUser(ctx context.Context, userID uint) ([]*models.Team, error) {
	teams := []*models.Team{}
	err := readDB(r.db).WithContext(ctx).
		Joins("JOIN team_members tm ON tm.team_id = teams.id").
		Where("tm.user_id = ?", userID).
		Order("teams.created_at ASC, teams.id ASC").
		Find(&teams).Error
	if err != nil {
		return nil, translateError(err, "Team", nil)
	}
	return teams, nil
}
