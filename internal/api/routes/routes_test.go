package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"smartcomply/internal/config"
	"smartcomply/internal/models"
	"smartcomply/internal/services"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB initializes a test database
func setupTestDB(t *testing.T) *config.Config {
	tmpDir := os.TempDir()
	testDBPath := fmt.Sprintf("%s/smartcomply_test_%d.db", tmpDir, time.Now().UnixNano())

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Type: "sqlite",
			SQLite: config.SQLiteConfig{
				Path: testDBPath,
			},
		},
		JWT: config.JWTConfig{
			Secret:    "test-secret-key-for-testing-only",
			ExpiresIn: "24h",
			Issuer:    "smartcomply-test",
		},
		Security: config.SecurityConfig{
			BcryptCost: 10,
		},
		Uploads: config.UploadsConfig{
			WebRoot: t.TempDir(),
		},
		External: config.ExternalConfig{
			BaseURL: "http://test.local",
		},
	}

	err := models.InitDB(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		if models.DB != nil {
			sqlDB, err := models.DB.DB()
			if err == nil {
				sqlDB.Close()
			}
			os.Remove(testDBPath)
		}
		models.DB = nil
	})

	return cfg
}

// createTestStaff creates a staff account with a usable password
func createTestStaff(t *testing.T, cfg *config.Config, name string, role models.StaffRole, branchID *uint) *models.Staff {
	authService := services.NewAuthService(cfg)
	hash, err := authService.HashPassword("password123")
	require.NoError(t, err)

	staff := &models.Staff{
		Name:         name,
		Email:        name + "@test.local",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		BranchID:     branchID,
	}
	require.NoError(t, models.DB.Create(staff).Error)
	return staff
}

// createTestToken creates a JWT token with a backing session
func createTestToken(t *testing.T, cfg *config.Config, staff *models.Staff) string {
	now := time.Now()
	expiresAt := now.Add(24 * time.Hour)

	claims := jwt.MapClaims{
		"staff_id": staff.ID,
		"email":    staff.Email,
		"role":     staff.Role,
		"exp":      expiresAt.Unix(),
		"iat":      now.Unix(),
		"iss":      cfg.JWT.Issuer,
		"jti":      fmt.Sprintf("%d-%d", staff.ID, now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWT.Secret))
	require.NoError(t, err)

	authService := services.NewAuthService(cfg)
	err = authService.CreateSession(staff.ID, tokenString, expiresAt)
	require.NoError(t, err)

	return tokenString
}

func setupTestRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupRoutes(r, cfg)
	return r
}

func TestAuthRoutes(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg)

	staff := createTestStaff(t, cfg, "admin", models.RoleAdmin, nil)

	t.Run("GET /api/health - public", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("POST /api/auth/login - success", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"email":    staff.Email,
			"password": "password123",
		})
		req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Contains(t, response, "token")
	})

	t.Run("POST /api/auth/login - case-insensitive email", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"email":    "ADMIN@TEST.LOCAL",
			"password": "password123",
		})
		req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("POST /api/auth/login - wrong password", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"email":    staff.Email,
			"password": "wrong",
		})
		req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GET /api/auth/me - requires token", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/auth/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GET /api/auth/me - success", func(t *testing.T) {
		token := createTestToken(t, cfg, staff)

		req, _ := http.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response models.Staff
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, staff.ID, response.ID)
	})
}

func TestRoleGates(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg)

	branch := &models.Branch{Name: "Branch X", Address: "X Street", IsActive: true}
	require.NoError(t, models.DB.Create(branch).Error)

	admin := createTestStaff(t, cfg, "admin", models.RoleAdmin, nil)
	user := createTestStaff(t, cfg, "user", models.RoleUser, &branch.ID)

	t.Run("POST /api/staff - forbidden for regular user", func(t *testing.T) {
		token := createTestToken(t, cfg, user)

		body, _ := json.Marshal(map[string]interface{}{
			"name":     "new-staff",
			"email":    "new@test.local",
			"password": "password123",
			"role":     "User",
		})
		req, _ := http.NewRequest("POST", "/api/staff", bytes.NewBuffer(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("POST /api/staff - success for admin", func(t *testing.T) {
		token := createTestToken(t, cfg, admin)

		body, _ := json.Marshal(map[string]interface{}{
			"name":      "new-staff",
			"email":     "new@test.local",
			"password":  "password123",
			"role":      "User",
			"branch_id": branch.ID,
		})
		req, _ := http.NewRequest("POST", "/api/staff", bytes.NewBuffer(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("POST /api/branches - forbidden for regular user", func(t *testing.T) {
		token := createTestToken(t, cfg, user)

		body, _ := json.Marshal(map[string]string{"name": "B", "address": "A"})
		req, _ := http.NewRequest("POST", "/api/branches", bytes.NewBuffer(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("GET /api/categories - open to all roles", func(t *testing.T) {
		token := createTestToken(t, cfg, user)

		req, _ := http.NewRequest("GET", "/api/categories", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestExternalRoutes(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg)

	branch := &models.Branch{Name: "Branch X", Address: "X Street", IsActive: true}
	require.NoError(t, models.DB.Create(branch).Error)
	category := &models.ComplianceCategory{Name: "Fire Safety", IsEnabled: true}
	require.NoError(t, models.DB.Create(category).Error)

	auditor := createTestStaff(t, cfg, "auditor", models.RoleUser, &branch.ID)
	staffID := auditor.ID
	audit := &models.Audit{
		Name:       "FireSafety_BranchX_01062025",
		Status:     models.AuditStatusDraft,
		StaffID:    &staffID,
		CategoryID: category.ID,
		DueDate:    time.Now().AddDate(0, 0, 7),
	}
	require.NoError(t, models.DB.Create(audit).Error)

	t.Run("share link then anonymous resolution", func(t *testing.T) {
		token := createTestToken(t, cfg, auditor)

		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/audits/%d/share", audit.ID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		shareToken := response["token"]
		require.NotEmpty(t, shareToken)

		// No Authorization header: the token alone grants read access.
		req, _ = http.NewRequest("GET", "/api/external/audits/"+shareToken, nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("QR size is clamped to the renderable range", func(t *testing.T) {
		token := createTestToken(t, cfg, auditor)

		url := fmt.Sprintf("/api/audits/%d/share/qr?size=100000", audit.ID)
		req, _ := http.NewRequest("GET", url, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

		img, err := png.Decode(w.Body)
		require.NoError(t, err)
		assert.Equal(t, 2048, img.Bounds().Dx())
	})

	t.Run("bogus token yields 404", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/external/audits/not-a-token", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("protected audit list still needs auth", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/audits", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
