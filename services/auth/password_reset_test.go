package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/pulsefit/gymhub/testutils"
)

func TestService_CreatePasswordResetToken(t *testing.T) {
	t.Run("issues a token with an expiry", func(t *testing.T) {
		svc, _, users := setupService(t)
		u := createActiveUser(t, svc, users, "member@x.com", testutils.TestPasswords.Valid)

		token, err := svc.CreatePasswordResetToken(u)
		require.NoError(t, err)
		assert.Equal(t, u.ID, token.UserID)
		assert.Len(t, token.Token, 64) // 32 random bytes, hex encoded
		assert.True(t, token.ExpiresAt.After(time.Now()))
	})

	t.Run("replaces previously issued tokens", func(t *testing.T) {
		svc, db, users := setupService(t)
		u := createActiveUser(t, svc, users, "member@x.com", testutils.TestPasswords.Valid)

		first, err := svc.CreatePasswordResetToken(u)
		require.NoError(t, err)
		second, err := svc.CreatePasswordResetToken(u)
		require.NoError(t, err)
		assert.NotEqual(t, first.Token, second.Token)

		var count int64
		db.Model(&PasswordResetToken{}).Where("user_id = ?", u.ID).Count(&count)
		assert.EqualValues(t, 1, count)
	})
}

func TestService_RequestPasswordReset(t *testing.T) {
	t.Run("mails a reset link for a known email", func(t *testing.T) {
		svc, db, users := setupService(t)
		u := createActiveUser(t, svc, users, "member@x.com", testutils.TestPasswords.Valid)

		mailSvc := &testutils.MockMailService{}
		mailSvc.On("SendTemplate", "password_reset", []string{"member@x.com"}, mock.Anything, mock.Anything).Return(nil)
		svc.SetMailService(mailSvc)

		require.NoError(t, svc.RequestPasswordReset("member@x.com"))

		var count int64
		db.Model(&PasswordResetToken{}).Where("user_id = ?", u.ID).Count(&count)
		assert.EqualValues(t, 1, count)
		mailSvc.AssertExpectations(t)
	})

	t.Run("silently ignores unknown emails", func(t *testing.T) {
		svc, db, _ := setupService(t)

		mailSvc := &testutils.MockMailService{}
		svc.SetMailService(mailSvc)

		require.NoError(t, svc.RequestPasswordReset("nobody@x.com"))

		var count int64
		db.Model(&PasswordResetToken{}).Count(&count)
		assert.EqualValues(t, 0, count)
		mailSvc.AssertNotCalled(t, "SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_ResetPassword(t *testing.T) {
	setup := func(t *testing.T) (*Service, *PasswordResetToken, string) {
		svc, _, users := setupService(t)
		u := createActiveUser(t, svc, users, "member@x.com", testutils.TestPasswords.Valid)

		mailSvc := &testutils.MockMailService{}
		mailSvc.On("SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		svc.SetMailService(mailSvc)

		token, err := svc.CreatePasswordResetToken(u)
		require.NoError(t, err)
		return svc, token, u.Email
	}

	t.Run("updates the password and consumes the token", func(t *testing.T) {
		svc, token, email := setup(t)

		require.NoError(t, svc.ResetPassword(token.Token, "NewPass1!", "NewPass1!"))

		u, err := svc.Authenticate(email, "NewPass1!")
		require.NoError(t, err)
		assert.Equal(t, email, u.Email)

		// single use: a second attempt with the same token fails
		err = svc.ResetPassword(token.Token, "OtherPass1!", "OtherPass1!")
		assert.ErrorIs(t, err, ErrResetTokenNotFound)
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		svc, _, _ := setup(t)

		err := svc.ResetPassword("bogus", "NewPass1!", "NewPass1!")
		assert.ErrorIs(t, err, ErrResetTokenNotFound)
	})

	t.Run("rejects an expired token and removes it", func(t *testing.T) {
		svc, token, _ := setup(t)

		require.NoError(t, svc.db.Model(&PasswordResetToken{}).
			Where("id = ?", token.ID).
			Update("expires_at", time.Now().Add(-time.Minute)).Error)

		err := svc.ResetPassword(token.Token, "NewPass1!", "NewPass1!")
		assert.ErrorIs(t, err, ErrResetTokenExpired)

		var count int64
		svc.db.Model(&PasswordResetToken{}).Count(&count)
		assert.EqualValues(t, 0, count)
	})

	t.Run("rejects mismatched confirmation without consuming the token", func(t *testing.T) {
		svc, token, _ := setup(t)

		err := svc.ResetPassword(token.Token, "NewPass1!", "Different1!")
		assert.ErrorIs(t, err, ErrPasswordMismatch)

		// token survives for a corrected retry
		require.NoError(t, svc.ResetPassword(token.Token, "NewPass1!", "NewPass1!"))
	})

	t.Run("rejects a weak replacement password", func(t *testing.T) {
		svc, token, _ := setup(t)

		err := svc.ResetPassword(token.Token, testutils.TestPasswords.NoSpecial, testutils.TestPasswords.NoSpecial)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "one special character")
	})
}

func TestService_CleanupExpiredResetTokens(t *testing.T) {
	svc, db, users := setupService(t)
	u := createActiveUser(t, svc, users, "member@x.com", testutils.TestPasswords.Valid)

	token, err := svc.CreatePasswordResetToken(u)
	require.NoError(t, err)
	require.NoError(t, db.Model(&PasswordResetToken{}).
		Where("id = ?", token.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	require.NoError(t, svc.CleanupExpiredResetTokens())

	var count int64
	db.Model(&PasswordResetToken{}).Count(&count)
	assert.EqualValues(t, 0, count)
}
