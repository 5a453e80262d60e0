package store

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/optotask/backend/internal/models"
)

// UserStore persists accounts and checks credentials.
type UserStore struct {
	DB *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{DB: db} }

// Register creates a user with a bcrypt-hashed password. Returns ErrConflict when the
// username or the email is already taken.
func (s *UserStore) Register(username, email, password string) (*models.User, error) {
	var count int64
	if err := s.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrConflict
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := models.User{Username: username, Email: email, HashedPassword: string(hash)}
	if err := s.DB.Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate verifies the password against the stored hash. Unknown username and
// mismatched password collapse into the same ErrInvalidCredentials.
func (s *UserStore) Authenticate(username, password string) (*models.User, error) {
	u, err := s.ByUsername(username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ByUsername loads a user by its unique username.
func (s *UserStore) ByUsername(username string) (*models.User, error) {
	var u models.User
	if err := s.DB.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
