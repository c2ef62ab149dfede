package services

import (
	"errors"
	"smartcomply/internal/config"
	"smartcomply/internal/models"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStaffNotFound      = errors.New("staff not found")
	ErrEmailExists        = errors.New("email already in use")
)

type AuthService struct {
	cfg      *config.Config
	activity *ActivityService
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg, activity: NewActivityService()}
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.Security.BcryptCost)
	return string(bytes), err
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// Authenticate verifies credentials against active staff accounts. Email
// matching is case-insensitive. A disabled account fails the same way as a
// wrong password so the response does not leak account state.
func (s *AuthService) Authenticate(email, password string) (*models.Staff, error) {
	var staff models.Staff
	if err := models.DB.Where("LOWER(email) = LOWER(?) AND is_active = ?", email, true).
		Preload("Branch").First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.VerifyPassword(staff.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	s.activity.Record(staff.ID, models.ActionLogin,
		Describe(staff.Name, staff.ID, "logged in"))

	return &staff, nil
}

// CreateDefaultAdmin seeds the configured admin account on an empty
// staff table.
func (s *AuthService) CreateDefaultAdmin() error {
	var count int64
	models.DB.Model(&models.Staff{}).Count(&count)

	if count > 0 {
		return nil
	}

	hashedPassword, err := s.HashPassword(s.cfg.DefaultAdmin.Password)
	if err != nil {
		return err
	}

	admin := &models.Staff{
		Name:         s.cfg.DefaultAdmin.Name,
		Email:        s.cfg.DefaultAdmin.Email,
		PasswordHash: hashedPassword,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	return models.DB.Create(admin).Error
}

// CreateSession creates a new session record
func (s *AuthService) CreateSession(staffID uint, token string, expiresAt time.Time) error {
	session := &models.Session{
		StaffID:   staffID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return models.DB.Create(session).Error
}

// GetSession retrieves an unexpired session by token
func (s *AuthService) GetSession(token string) (*models.Session, error) {
	var session models.Session
	if err := models.DB.Where("token = ? AND expires_at > ?", token, time.Now()).
		Preload("Staff").Preload("Staff.Branch").First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession deletes a session and records the logout
func (s *AuthService) DeleteSession(token string) error {
	var session models.Session
	if err := models.DB.Where("token = ?", token).Preload("Staff").First(&session).Error; err == nil {
		s.activity.Record(session.StaffID, models.ActionLogout,
			Describe(session.Staff.Name, session.StaffID, "logged out"))
	}
	return models.DB.Where("token = ?", token).Delete(&models.Session{}).Error
}

// DeleteExpiredSessions removes expired sessions
func (s *AuthService) DeleteExpiredSessions() error {
	return models.DB.Where("expires_at < ?", time.Now()).Delete(&models.Session{}).Error
}
