// Package authz decides whether a principal may mutate a post, comment, profile,
// team or project. Every check is a free function over the principal's role tag
// and its relationship to the target.
package authz

import "devcircle/internal/models"

// Principal is an already-authenticated caller.
type Principal struct {
	UserID uint
	Role   models.Role
}

// NewPrincipal builds a principal from a stored user.
func NewPrincipal(u *models.User) Principal {
	if u == nil {
		return Principal{}
	}
	role := u.Role
	if !role.Valid() {
		role = models.RoleUser
	}
	return Principal{UserID: u.ID, Role: role}
}

// CanBypassOwnership reports whether the principal skips author, owner and
// membership checks. Only admins do.
func CanBypassOwnership(p Principal) bool {
	switch p.Role {
	case models.RoleAdmin:
		return true
	default:
		return false
	}
}

// IsSelf reports whether the principal is the given user.
func IsSelf(p Principal, userID uint) bool {
	return p.UserID != 0 && p.UserID == userID
}

// CanModifyPost covers both edit and delete.
func CanModifyPost(p Principal, post *models.Post) bool {
	if post == nil {
		return false
	}
	return IsSelf(p, post.UserID) || CanBypassOwnership(p)
}

// CanModifyComment covers both edit and delete.
func CanModifyComment(p Principal, comment *models.Comment) bool {
	if comment == nil {
		return false
	}
	return IsSelf(p, comment.UserID) || CanBypassOwnership(p)
}

func CanModifyProfile(p Principal, user *models.User) bool {
	if user == nil {
		return false
	}
	return IsSelf(p, user.ID) || CanBypassOwnership(p)
}

// CanManageTeam gates member management, rename and deletion. membership is the
// principal's own membership in the team, nil if they have none.
func CanManageTeam(p Principal, membership *models.TeamMember) bool {
	return membership.IsOwner() || CanBypassOwnership(p)
}

// CanModifyProject is looser than CanManageTeam: any member of the project's team
// qualifies, whatever their role.
func CanModifyProject(p Principal, membership *models.TeamMember) bool {
	return membership != nil || CanBypassOwnership(p)
}

// CanAttachToTeam gates creating a project inside an explicit team.
func CanAttachToTeam(p Principal, membership *models.TeamMember) bool {
	return CanModifyProject(p, membership)
}
