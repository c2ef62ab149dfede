package handlers

import (
	"smartcomply/internal/api/middleware"
	"smartcomply/internal/config"
	"smartcomply/internal/models"
	"smartcomply/internal/services"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	Staff *models.Staff `json:"staff"`
}

// Login handles staff login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	staff, err := h.authService.Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(401, gin.H{"error": "Invalid credentials"})
		return
	}

	token, expiresAt, err := h.generateToken(staff)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to generate token"})
		return
	}

	if err := h.authService.CreateSession(staff.ID, token, expiresAt); err != nil {
		c.JSON(500, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(200, LoginResponse{
		Token: token,
		Staff: staff,
	})
}

// Logout handles staff logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session, exists := c.Get("session")
	if !exists {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	sess := session.(*models.Session)
	if err := h.authService.DeleteSession(sess.Token); err != nil {
		c.JSON(500, gin.H{"error": "Failed to logout"})
		return
	}

	c.JSON(200, gin.H{"message": "Logged out successfully"})
}

// GetMe returns the authenticated staff's account
func (h *AuthHandler) GetMe(c *gin.Context) {
	actor := middleware.Actor(c)
	if actor.StaffID == 0 {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	var staff models.Staff
	if err := models.DB.Preload("Branch").First(&staff, actor.StaffID).Error; err != nil {
		c.JSON(404, gin.H{"error": "Staff not found"})
		return
	}

	c.JSON(200, staff)
}

// generateToken generates a JWT token for the staff member
func (h *AuthHandler) generateToken(staff *models.Staff) (string, time.Time, error) {
	expiresIn, err := time.ParseDuration(h.cfg.JWT.ExpiresIn)
	if err != nil {
		expiresIn = 24 * time.Hour
	}

	expiresAt := time.Now().Add(expiresIn)

	secret := h.cfg.JWT.Secret
	if secret == "" {
		secret = "smartcomply-default-secret-change-in-production"
	}

	claims := jwt.MapClaims{
		"staff_id": staff.ID,
		"email":    staff.Email,
		"role":     staff.Role,
		"exp":      expiresAt.Unix(),
		"iat":      time.Now().Unix(),
		"iss":      h.cfg.JWT.Issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}
