package domain

import "time"

// ProjectRole enumerates membership roles inside a project.
type ProjectRole string

const (
	ProjectRoleManager ProjectRole = "MANAGER"
	ProjectRoleMember  ProjectRole = "MEMBER"
)

// Project groups users and questions. The creator is implicitly privileged
// and does not need a membership row.
type Project struct {
	ID          string
	Name        string
	Description string
	CreatorID   string
	Members     []ProjectMember
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectMember is unique per (project, user).
type ProjectMember struct {
	ID        string
	ProjectID string
	UserID    string
	Role      ProjectRole
	CreatedAt time.Time
}

// Member returns the membership row for userID, if any.
func (p *Project) Member(userID string) *ProjectMember {
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			return &p.Members[i]
		}
	}
	return nil
}

// AccessLevel is the resolved privilege of a user on a project.
type AccessLevel string

const (
	AccessNone    AccessLevel = "none"
	AccessMember  AccessLevel = "member"
	AccessManager AccessLevel = "manager"
	AccessAdmin   AccessLevel = "admin"
)
