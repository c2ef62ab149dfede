package services

import (
	"smartcomply/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAuditName(t *testing.T) {
	now := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)

	t.Run("spaces are stripped from name parts", func(t *testing.T) {
		name := DefaultAuditName("Fire Safety", "Branch X", now)
		assert.Equal(t, "FireSafety_BranchX_01062025", name)
	})

	t.Run("date part is day-month-year", func(t *testing.T) {
		name := DefaultAuditName("Hygiene", "HQ", time.Date(2025, 12, 9, 23, 0, 0, 0, time.UTC))
		assert.Equal(t, "Hygiene_HQ_09122025", name)
	})
}

func TestDefaultDueDate(t *testing.T) {
	t.Run("seven days ahead on the UTC+8 wall clock", func(t *testing.T) {
		// 02:00 UTC on June 1 is 10:00 June 1 in UTC+8; a week later is
		// June 8, and the wall-clock reading is stored as UTC.
		now := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
		due := DefaultDueDate(now)

		assert.Equal(t, time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC), due)
	})

	t.Run("crossing midnight in UTC+8 moves the date", func(t *testing.T) {
		// 20:00 UTC on May 31 is already June 1 in UTC+8.
		now := time.Date(2025, 5, 31, 20, 0, 0, 0, time.UTC)
		due := DefaultDueDate(now)

		assert.Equal(t, time.Date(2025, 6, 8, 4, 0, 0, 0, time.UTC), due)
	})
}

func TestCreateAudit(t *testing.T) {
	setupTestDB(t)

	branch := createTestBranch(t, "Branch X")
	category := createTestCategory(t, "Fire Safety")
	auditor := createTestStaff(t, "auditor", models.RoleUser, &branch.ID)

	svc := NewAuditService()
	svc.Now = func() time.Time { return time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC) }

	t.Run("defaults name and due date", func(t *testing.T) {
		audit, err := svc.CreateAudit(actorFor(auditor), category.ID)
		require.NoError(t, err)

		assert.Equal(t, "FireSafety_BranchX_01062025", audit.Name)
		assert.Equal(t, models.AuditStatusDraft, audit.Status)
		assert.Equal(t, time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC), audit.DueDate.UTC())
		require.NotNil(t, audit.StaffID)
		assert.Equal(t, auditor.ID, *audit.StaffID)
	})

	t.Run("writes a creation log entry", func(t *testing.T) {
		var count int64
		models.DB.Model(&models.ActivityLog{}).
			Where("staff_id = ? AND action_type = ?", auditor.ID, models.ActionAdd).
			Count(&count)
		assert.Greater(t, count, int64(0))
	})

	t.Run("rejects a disabled category", func(t *testing.T) {
		disabled := &models.ComplianceCategory{Name: "Retired", IsEnabled: false}
		require.NoError(t, models.DB.Create(disabled).Error)

		_, err := svc.CreateAudit(actorFor(auditor), disabled.ID)
		assert.ErrorIs(t, err, ErrCategoryDisabled)
	})

	t.Run("rejects an unknown category", func(t *testing.T) {
		_, err := svc.CreateAudit(actorFor(auditor), 99999)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("reports an existing audit for the category", func(t *testing.T) {
		exists, err := svc.HasExistingAudit(actorFor(auditor), category.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		other := createTestCategory(t, "Hygiene")
		exists, err = svc.HasExistingAudit(actorFor(auditor), other.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestAuditEffectiveStatus(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("past due and not done is overdue", func(t *testing.T) {
		a := models.Audit{Status: models.AuditStatusDraft, DueDate: now.AddDate(0, 0, -1)}
		assert.Equal(t, models.AuditStatusOverdue, a.EffectiveStatus(now))
	})

	t.Run("done never goes overdue", func(t *testing.T) {
		a := models.Audit{Status: models.AuditStatusDone, DueDate: now.AddDate(0, 0, -30)}
		assert.Equal(t, models.AuditStatusDone, a.EffectiveStatus(now))
	})

	t.Run("rejected past due reads overdue", func(t *testing.T) {
		a := models.Audit{Status: models.AuditStatusRejected, DueDate: now.AddDate(0, 0, -1)}
		assert.Equal(t, models.AuditStatusOverdue, a.EffectiveStatus(now))
	})

	t.Run("future due date keeps the stored status", func(t *testing.T) {
		a := models.Audit{Status: models.AuditStatusDraft, DueDate: now.AddDate(0, 0, 1)}
		assert.Equal(t, models.AuditStatusDraft, a.EffectiveStatus(now))
	})
}

func TestUpdateAuditStatus(t *testing.T) {
	setupTestDB(t)

	branch := createTestBranch(t, "Branch X")
	category := createTestCategory(t, "Fire Safety")
	auditor := createTestStaff(t, "auditor", models.RoleUser, &branch.ID)
	audit := createTestAudit(t, auditor.ID, category.ID)

	svc := NewAuditService()

	t.Run("moves between stored states", func(t *testing.T) {
		updated, err := svc.UpdateAuditStatus(actorFor(auditor), audit.ID, models.AuditStatusDone)
		require.NoError(t, err)
		assert.Equal(t, models.AuditStatusDone, updated.Status)
	})

	t.Run("overdue cannot be stored", func(t *testing.T) {
		_, err := svc.UpdateAuditStatus(actorFor(auditor), audit.ID, models.AuditStatusOverdue)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("other staff cannot touch the audit", func(t *testing.T) {
		stranger := createTestStaff(t, "stranger", models.RoleUser, &branch.ID)
		_, err := svc.UpdateAuditStatus(actorFor(stranger), audit.ID, models.AuditStatusDraft)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestDeleteAudit(t *testing.T) {
	setupTestDB(t)

	branch := createTestBranch(t, "Branch X")
	category := createTestCategory(t, "Fire Safety")
	auditor := createTestStaff(t, "auditor", models.RoleUser, &branch.ID)
	audit := createTestAudit(t, auditor.ID, category.ID)
	form := createPublishedForm(t, category.ID)

	staffID := auditor.ID
	responder := &models.FormResponder{
		FormID:      form.ID,
		AuditID:     audit.ID,
		StaffID:     &staffID,
		Name:        auditor.Name,
		SubmittedAt: time.Now(),
	}
	require.NoError(t, models.DB.Create(responder).Error)
	require.NoError(t, models.DB.Create(&models.FormResponse{
		ResponderID: responder.ID,
		ElementID:   form.Elements[0].ID,
		Answer:      "ok",
	}).Error)
	require.NoError(t, models.DB.Create(&models.CorrectiveAction{
		AuditID:        audit.ID,
		Description:    "Blocked exit",
		ProposedAction: "Clear it",
		TargetDate:     time.Now().AddDate(0, 0, 3),
		Status:         models.CorrectiveStatusPending,
		IsDeleted:      true,
	}).Error)

	svc := NewAuditService()
	auditName := audit.Name

	require.NoError(t, svc.DeleteAudit(actorFor(auditor), audit.ID))

	t.Run("removes the audit and its dependents", func(t *testing.T) {
		var count int64
		models.DB.Model(&models.Audit{}).Where("id = ?", audit.ID).Count(&count)
		assert.Zero(t, count)
		models.DB.Model(&models.FormResponder{}).Where("audit_id = ?", audit.ID).Count(&count)
		assert.Zero(t, count)
		models.DB.Model(&models.FormResponse{}).Where("responder_id = ?", responder.ID).Count(&count)
		assert.Zero(t, count)
		models.DB.Model(&models.CorrectiveAction{}).Where("audit_id = ?", audit.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("log entry keeps the name snapshot", func(t *testing.T) {
		var entry models.ActivityLog
		err := models.DB.Where("action_type = ?", models.ActionDelete).
			Order("id DESC").First(&entry).Error
		require.NoError(t, err)
		assert.Contains(t, entry.Description, auditName)
		// Same subject prefix as every other entry, so the feed's "You"
		// substitution applies to deletions too.
		assert.Contains(t, entry.Description, Describe(auditor.Name, auditor.ID, ""))
	})
}
