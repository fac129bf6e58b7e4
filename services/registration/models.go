package registration

import (
	"time"

	"github.com/pulsefit/gymhub/services/user"
	"gorm.io/gorm"
)

// PendingRegistration stages an account between form submission and OTP
// verification. At most one live row exists per email; a new submission for
// the same address replaces the old one.
type PendingRegistration struct {
	gorm.Model
	Email             string    `json:"email" gorm:"uniqueIndex;not null"`
	Name              string    `json:"name" gorm:"not null"`
	PasswordHash      string    `json:"-" gorm:"not null"`
	Role              user.Role `json:"role" gorm:"size:32;not null"`
	OTPCode           string    `json:"-" gorm:"size:12;not null"`
	OTPExpiresAt      time.Time `json:"otp_expires_at" gorm:"not null"`
	Attempts          int       `json:"attempts" gorm:"default:0"`
	ExperienceLevel   string    `json:"experience_level" gorm:"size:32"`
	FitnessGoals      string    `json:"fitness_goals" gorm:"size:500"`
	PreferredRoutines string    `json:"preferred_routines" gorm:"size:500"`
}

func (PendingRegistration) TableName() string {
	return "pending_registrations"
}
