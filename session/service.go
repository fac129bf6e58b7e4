package session

import (
	"time"

	"github.com/mileusna/useragent"
	"gorm.io/gorm"
)

type sessionService struct {
	db             *gorm.DB
	sessionManager *Manager
}

func NewSessionService(db *gorm.DB, sessionManager *Manager) SessionService {
	return &sessionService{
		db:             db,
		sessionManager: sessionManager,
	}
}

func (s *sessionService) TrackSession(userID uint, token string, ipAddress, userAgent string, expiresAt time.Time) error {
	session := UserSession{
		UserID:     userID,
		Token:      token,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Browser:    GetBrowserInfo(userAgent),
		DeviceType: GetDeviceType(userAgent),
		CreatedAt:  time.Now(),
		LastUsed:   time.Now(),
		ExpiresAt:  expiresAt,
	}

	return s.db.Create(&session).Error
}

func (s *sessionService) UpdateLastUsed(token string) error {
	return s.db.Model(&UserSession{}).
		Where("token = ?", token).
		Update("last_used", time.Now()).Error
}

func (s *sessionService) GetUserSessions(userID uint, currentToken string) ([]UserSession, error) {
	var sessions []UserSession

	err := s.db.Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("last_used DESC").
		Find(&sessions).Error

	if err != nil {
		return nil, err
	}

	for i := range sessions {
		if sessions[i].Token == currentToken {
			sessions[i].Current = true
		}
	}

	return sessions, nil
}

func (s *sessionService) RevokeSession(userID uint, sessionID uint) error {
	var session UserSession
	err := s.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if err != nil {
		return err
	}

	if s.sessionManager != nil && s.sessionManager.SessionManager.Store != nil {
		if err := s.sessionManager.SessionManager.Store.Delete(session.Token); err != nil {
			return err
		}
	}

	return s.db.Delete(&session).Error
}

func (s *sessionService) RevokeAllOtherSessions(userID uint, currentToken string) error {
	var sessions []UserSession
	err := s.db.Where("user_id = ? AND token != ?", userID, currentToken).Find(&sessions).Error
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		return nil
	}

	for _, session := range sessions {
		if s.sessionManager != nil && s.sessionManager.SessionManager.Store != nil {
			if err := s.sessionManager.SessionManager.Store.Delete(session.Token); err != nil {
				return err
			}
		}
	}

	return s.db.Where("user_id = ? AND token != ?", userID, currentToken).Delete(&UserSession{}).Error
}

func (s *sessionService) CleanupExpiredSessions() error {
	return s.db.Where("expires_at < ?", time.Now()).Delete(&UserSession{}).Error
}

func (s *sessionService) RemoveSessionByToken(token string) error {
	return s.db.Where("token = ?", token).Delete(&UserSession{}).Error
}

func GetBrowserInfo(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Browser"
	}

	ua := useragent.Parse(userAgentString)

	if ua.Name != "" {
		if ua.Version != "" {
			return ua.Name + " " + ua.Version
		}
		return ua.Name
	}

	return "Unknown Browser"
}

func GetDeviceType(userAgentString string) string {
	ua := useragent.Parse(userAgentString)

	switch {
	case ua.Mobile:
		return "Mobile"
	case ua.Tablet:
		return "Tablet"
	case ua.Bot:
		return "Bot"
	default:
		return "Desktop"
	}
}

func GetDeviceInfo(userAgentString string) map[string]any {
	ua := useragent.Parse(userAgentString)

	deviceType := "Desktop"
	switch {
	case ua.Mobile:
		deviceType = "Mobile"
	case ua.Tablet:
		deviceType = "Tablet"
	case ua.Bot:
		deviceType = "Bot"
	}

	browser := "Unknown Browser"
	if ua.Name != "" {
		browser = ua.Name
		if ua.Version != "" {
			browser = ua.Name + " " + ua.Version
		}
	}

	os := "Unknown OS"
	if ua.OS != "" {
		os = ua.OS
		if ua.OSVersion != "" {
			os = ua.OS + " " + ua.OSVersion
		}
	}

	return map[string]any{
		"browser":     browser,
		"os":          os,
		"device_type": deviceType,
		"mobile":      ua.Mobile,
		"tablet":      ua.Tablet,
		"bot":         ua.Bot,
	}
}
