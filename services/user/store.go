package user

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("user not found")

// Store is the credential-store contract for user accounts. All
// implementations must use parameterized queries only.
type Store interface {
	FindByEmail(email string) (*User, error)
	FindByID(id uint) (*User, error)
	EmailExists(email string) (bool, error)
	Create(u *User) error
	UpdatePasswordHash(userID uint, passwordHash string) error
	CreateMemberProfile(p *MemberProfile) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindByEmail(email string) (*User, error) {
	var u User
	if err := s.db.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &u, nil
}

func (s *gormStore) FindByID(id uint) (*User, error) {
	var u User
	if err := s.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &u, nil
}

func (s *gormStore) EmailExists(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

func (s *gormStore) Create(u *User) error {
	if u.PublicID == uuid.Nil {
		u.PublicID = uuid.New()
	}
	if err := s.db.Create(u).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *gormStore) UpdatePasswordHash(userID uint, passwordHash string) error {
	result := s.db.Model(&User{}).Where("id = ?", userID).Update("password_hash", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) CreateMemberProfile(p *MemberProfile) error {
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to create member profile: %w", err)
	}
	return nil
}
