package services

import (
	"fmt"
	"os"
	"smartcomply/internal/config"
	"smartcomply/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// setupTestDB initializes a throwaway sqlite database
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

func createTestBranch(t *testing.T, name string) *models.Branch {
	branch := &models.Branch{Name: name, Address: name + " Address", IsActive: true}
	require.NoError(t, models.DB.Create(branch).Error)
	return branch
}

func createTestCategory(t *testing.T, name string) *models.ComplianceCategory {
	category := &models.ComplianceCategory{Name: name, IsEnabled: true}
	require.NoError(t, models.DB.Create(category).Error)
	return category
}

func createTestStaff(t *testing.T, name string, role models.StaffRole, branchID *uint) *models.Staff {
	staff := &models.Staff{
		Name:         name,
		Email:        name + "@test.local",
		PasswordHash: "not-a-real-hash",
		Role:         role,
		IsActive:     true,
		BranchID:     branchID,
	}
	require.NoError(t, models.DB.Create(staff).Error)
	return staff
}

func actorFor(staff *models.Staff) models.Actor {
	return models.Actor{
		StaffID:  staff.ID,
		Name:     staff.Name,
		Role:     staff.Role,
		BranchID: staff.BranchID,
	}
}

// createPublishedForm builds a small published form: a required text input,
// an optional checkbox, and a section header.
func createPublishedForm(t *testing.T, categoryID uint) *models.Form {
	form := &models.Form{
		Name:       "Inspection Checklist",
		CategoryID: categoryID,
		Status:     models.FormStatusPublished,
		Elements: []models.FormElement{
			{Label: "Inspector Notes", ElementType: models.ElementTextInput, IsRequired: true, Order: 1},
			{Label: "Areas Checked", ElementType: models.ElementCheckbox, Options: "Kitchen,Storage,Exit", Order: 2},
			{Label: "Section A", ElementType: models.ElementSectionHeader, Order: 3},
		},
	}
	require.NoError(t, models.DB.Create(form).Error)
	return form
}

func createTestAudit(t *testing.T, staffID uint, categoryID uint) *models.Audit {
	audit := &models.Audit{
		Name:       "Test Audit",
		Status:     models.AuditStatusDraft,
		StaffID:    &staffID,
		CategoryID: categoryID,
		DueDate:    time.Now().AddDate(0, 0, 7),
	}
	require.NoError(t, models.DB.Create(audit).Error)
	return audit
}
