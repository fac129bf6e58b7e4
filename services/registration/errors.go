package registration

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmailTaken       = errors.New("an account with this email already exists")
	ErrExpiredOrMissing = errors.New("no active registration found for this email")
	ErrTooManyAttempts  = errors.New("too many verification attempts, please register again")
)

// ValidationError reports every violated input rule at once so the form can
// show the full list.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// InvalidCodeError is retryable; Remaining tells the user how many attempts
// are left before the registration is locked.
type InvalidCodeError struct {
	Remaining int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("incorrect verification code, %d attempts remaining", e.Remaining)
}

// CooldownError throttles OTP resends.
type CooldownError struct {
	RetryAfter string
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %s before requesting another code", e.RetryAfter)
}

// NotificationError signals that the OTP email could not be delivered.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("failed to send verification email: %v", e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
