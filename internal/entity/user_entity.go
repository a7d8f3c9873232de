package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleSupervisor UserRole = "supervisor"
	UserRoleSocialWork UserRole = "social_work"
	UserRoleMonitor    UserRole = "monitor"
)

func ValidRole(r string) bool {
	switch UserRole(r) {
	case UserRoleAdmin, UserRoleSupervisor, UserRoleSocialWork, UserRoleMonitor:
		return true
	}
	return false
}

// User is a staff account. Supervisors carry the category they are allowed
// to decide for; the other roles have no category.
type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	Role         UserRole
	Category     *Category
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is the authenticated identity performing an operation. It is passed
// explicitly to every service method that mutates state; nothing reads the
// acting identity from ambient request context.
type Actor struct {
	Id       uuid.UUID
	Email    string
	Role     UserRole
	Category *Category
}

// PasswordResetToken is the durable record of an issued reset link. It is
// marked used on redemption (not deleted) so a replay can be told apart from
// a token that never existed.
type PasswordResetToken struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	UserEmail string
	Token     string
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
	CreatedBy string
	CreatedAt time.Time
}
