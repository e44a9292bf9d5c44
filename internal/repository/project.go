package repository

import (
	"context"

	"devcircle/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectRepository defines the interface for project data operations
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	List(ctx context.Context, limit, offset int) ([]*models.Project, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.Project, error)
	ListByTeam(ctx context.Context, teamID uint) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uint) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectOrder = "projects.created_at DESC, projects.id DESC"

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error; err != nil {
		return translateError(err, "Project", project.ID)
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, translateError(err, "Project", id)
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, limit, offset int) ([]*models.Project, error) {
	projects := []*models.Project{}
	q := readDB(r.db).WithContext(ctx).Order(projectOrder)
	if err := page(q, limit, offset).Find(&projects).Error; err != nil {
		return nil, translateError(err, "Project", nil)
	}
	return projects, nil
}

// ListForUser returns projects of every team userID belongs to, newest first.
func (r *projectRepository) ListForUser(ctx context.Context, userID uint) ([]*models.Project, error) {
	projects := []*models.Project{}
	err := readDB(r.db).WithContext(ctx).
		Joins("JOIN team_members tm ON tm.team_id = projects.team_id").
		Where("tm.user_id = ?", userID).
		Order(projectOrder).
		Find(&projects).Error
	if err != nil {
		return nil, translateError(err, "Project", nil)
	}
	return projects, nil
}

func (r *projectRepository) ListByTeam(ctx context.Context, teamID uint) ([]*models.Project, error) {
	projects := []*models.Project{}
	err := readDB(r.db).WithContext(ctx).
		Where("team_id = ?", teamID).
		Order(projectOrder).
		Find(&projects).Error
	if err != nil {
		return nil, translateError(err, "Project", nil)
	}
	return projects, nil
}

// Update writes every editable column; callers merge the patch first.
func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	res := r.db.WithContext(ctx).Model(project).
		Select("project_name", "description", "tech_stack", "git_hub_repo", "live_demo_url", "screenshots", "updated_at").
		Updates(project)
	if res.Error != nil {
		return translateError(res.Error, "Project", project.ID)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Project", project.ID)
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, id)
	if res.Error != nil {
		return translateError(res.Error, "Project", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Project", id)
	}
	return nil
}
