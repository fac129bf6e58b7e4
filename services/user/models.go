package user

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleMember           Role = "member"
	RoleTrainer          Role = "trainer"
	RoleAdmin            Role = "admin"
	RoleEquipmentManager Role = "equipment_manager"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMember, RoleTrainer, RoleAdmin, RoleEquipmentManager:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

type Status string

const (
	StatusActive Status = "active"
	// StatusPendingEmailVerification is never assigned by the OTP flow, which
	// only creates accounts after the email is proven. It is kept for an
	// email-link verification flow where the account exists before the proof.
	StatusPendingEmailVerification Status = "pending_email_verification"
	StatusPendingAdminApproval     Status = "pending_admin_approval"
)

// InitialStatus is the status a freshly verified account starts in.
// Staff roles wait for an admin to approve them before gaining access.
func InitialStatus(role Role) Status {
	switch role {
	case RoleTrainer, RoleEquipmentManager:
		return StatusPendingAdminApproval
	default:
		return StatusActive
	}
}

type User struct {
	gorm.Model
	PublicID        uuid.UUID  `json:"public_id" gorm:"type:uuid;uniqueIndex;not null"`
	Name            string     `json:"name" gorm:"not null"`
	Email           string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash    string     `json:"-" gorm:"not null"`
	Role            Role       `json:"role" gorm:"size:32;not null"`
	Status          Status     `json:"status" gorm:"size:32;not null"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// MemberProfile holds the optional fitness preferences collected on signup.
type MemberProfile struct {
	gorm.Model
	UserID            uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	ExperienceLevel   string `json:"experience_level" gorm:"size:32"`
	FitnessGoals      string `json:"fitness_goals" gorm:"size:500"`
	PreferredRoutines string `json:"preferred_routines" gorm:"size:500"`
}

func (MemberProfile) TableName() string {
	return "member_profiles"
}
