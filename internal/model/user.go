package model

import (
	"fmt"
	"time"
)

// Role controls which partition a user edits or views.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleCoach        Role = "coach"
	RoleEntrepreneur Role = "entrepreneur"
)

// ParseRole validates a stored or claimed role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleCoach, RoleEntrepreneur:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: invalid role %q", ErrValidation, s)
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Partition returns the board set a role reads. Admins and coaches see the
// coach partition; entrepreneurs see theirs.
func (r Role) Partition() Partition {
	if r == RoleEntrepreneur {
		return PartitionEntrepreneur
	}
	return PartitionCoach
}
