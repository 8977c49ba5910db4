package domain

import "time"

// User is an account that can join projects, raise and answer questions.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         GlobalRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the request identity for the user.
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}
