package models

import "time"

// Membership roles. Roles are free-form strings; these two carry meaning.
const (
	TeamRoleOwner       = "Owner"
	TeamRoleContributor = "Contributor"
)

// Team groups users that share projects.
type Team struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"column:team_name;not null" json:"team_name"`
	IsPersonal bool   `gorm:"not null;default:false" json:"is_personal"`
	// PersonalOwnerID is set only on personal teams; its unique index is what keeps
	// a user at one personal team.
	PersonalOwnerID *uint         `gorm:"uniqueIndex" json:"personal_owner_id,omitempty"`
	Members         []*TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Projects        []*Project    `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"projects,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TeamMember maps users to teams and tracks role.
type TeamMember struct {
	TeamID    uint      `gorm:"primaryKey;autoIncrement:false" json:"team_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Role      string    `gorm:"type:varchar(40);not null;default:'Contributor'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOwner reports whether the membership carries the Owner role.
func (m *TeamMember) IsOwner() bool {
	return m != nil && m.Role == TeamRoleOwner
}

// Project belongs to exactly one team.
type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TeamID      uint      `gorm:"not null;index" json:"team_id"`
	ProjectName string    `gorm:"not null" json:"project_name"`
	Description string    `gorm:"type:text" json:"description"`
	TechStack   []string  `gorm:"type:text;serializer:json" json:"tech_stack"`
	GitHubRepo  string    `json:"github_repo"`
	LiveDemoURL string    `json:"live_demo_url"`
	Screenshots []string  `gorm:"type:text;serializer:json" json:"screenshots"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
