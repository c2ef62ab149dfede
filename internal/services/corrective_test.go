package services

import (
	"bytes"
	"smartcomply/internal/models"
	"smartcomply/internal/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func photo(name string) *Upload {
	return &Upload{Filename: name, Content: bytes.NewReader([]byte("img"))}
}

func TestCreateCorrectiveAction(t *testing.T) {
	setupTestDB(t)

	branch := createTestBranch(t, "Branch X")
	category := createTestCategory(t, "Fire Safety")
	auditor := createTestStaff(t, "auditor", models.RoleUser, &branch.ID)
	audit := createTestAudit(t, auditor.ID, category.ID)

	svc := NewCorrectiveService(storage.NewDisk(t.TempDir()))
	actor := actorFor(auditor)

	base := func() *CreateCorrectiveData {
		return &CreateCorrectiveData{
			AuditID:        audit.ID,
			Description:    "Blocked fire exit",
			ProposedAction: "Clear the corridor",
			TargetDate:     time.Now().AddDate(0, 0, 7),
		}
	}

	t.Run("defaults status to pending", func(t *testing.T) {
		action, err := svc.CreateCorrectiveAction(actor, base(), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, models.CorrectiveStatusPending, action.Status)
	})

	t.Run("stores accepted photos", func(t *testing.T) {
		action, err := svc.CreateCorrectiveAction(actor, base(), photo("before.jpg"), photo("after.png"))
		require.NoError(t, err)
		assert.Contains(t, action.BeforePhotoPath, "/uploads/correctiveactions/")
		assert.Contains(t, action.AfterPhotoPath, "/uploads/correctiveactions/")
	})

	t.Run("rejects a gif on create", func(t *testing.T) {
		_, err := svc.CreateCorrectiveAction(actor, base(), photo("before.gif"), nil)
		assert.ErrorIs(t, err, ErrBadPhotoType)
	})

	t.Run("rejects an unknown audit", func(t *testing.T) {
		data := base()
		data.AuditID = 99999
		_, err := svc.CreateCorrectiveAction(actor, data, nil, nil)
		assert.ErrorIs(t, err, ErrAuditNotFound)
	})
}

func TestUpdateCorrectiveAction(t *testing.T) {
	setupTestDB(t)

	branch := createTestBranch(t, "Branch X")
	category := createTestCategory(t, "Fire Safety")
	auditor := createTestStaff(t, "auditor", models.RoleUser, &branch.ID)
	audit := createTestAudit(t, auditor.ID, category.ID)

	store := storage.NewDisk(t.TempDir())
	svc := NewCorrectiveService(store)
	actor := actorFor(auditor)

	targetDate := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	action, err := svc.CreateCorrectiveAction(actor, &CreateCorrectiveData{
		AuditID:        audit.ID,
		Description:    "Blocked fire exit",
		ProposedAction: "Clear the corridor",
		TargetDate:     targetDate,
	}, photo("before.jpg"), nil)
	require.NoError(t, err)

	t.Run("target date survives every edit", func(t *testing.T) {
		desc := "Blocked fire exit, east wing"
		status := models.CorrectiveStatusInProgress
		updated, err := svc.UpdateCorrectiveAction(actor, action.ID, &UpdateCorrectiveData{
			Description: &desc,
			Status:      &status,
		}, nil, nil)
		require.NoError(t, err)

		assert.Equal(t, desc, updated.Description)
		assert.Equal(t, targetDate, updated.TargetDate.UTC())
	})

	t.Run("gif is accepted on edit", func(t *testing.T) {
		oldPath := action.BeforePhotoPath
		updated, err := svc.UpdateCorrectiveAction(actor, action.ID, &UpdateCorrectiveData{}, photo("before.gif"), nil)
		require.NoError(t, err)

		assert.NotEqual(t, oldPath, updated.BeforePhotoPath)
		assert.False(t, store.Exists(oldPath))
	})

	t.Run("rejected photo leaves the record untouched", func(t *testing.T) {
		before, _ := svc.GetCorrectiveAction(action.ID)
		_, err := svc.UpdateCorrectiveAction(actor, action.ID, &UpdateCorrectiveData{}, photo("before.bmp"), nil)
		assert.ErrorIs(t, err, ErrBadPhotoType)

		after, _ := svc.GetCorrectiveAction(action.ID)
		assert.Equal(t, before.BeforePhotoPath, after.BeforePhotoPath)
	})
}

func TestSoftDeleteAndRecover(t *testing.T) {
	setupTestDB(t)

	branch := createTestBranch(t, "Branch X")
	category := createTestCategory(t, "Fire Safety")
	auditor := createTestStaff(t, "auditor", models.RoleUser, &branch.ID)
	audit := createTestAudit(t, auditor.ID, category.ID)

	svc := NewCorrectiveService(storage.NewDisk(t.TempDir()))
	actor := actorFor(auditor)

	action, err := svc.CreateCorrectiveAction(actor, &CreateCorrectiveData{
		AuditID:        audit.ID,
		Description:    "Expired extinguisher",
		ProposedAction: "Replace it",
		TargetDate:     time.Now().AddDate(0, 0, 7),
	}, nil, nil)
	require.NoError(t, err)
	createdAt := action.CreatedAt

	t.Run("delete hides the action from the active list", func(t *testing.T) {
		require.NoError(t, svc.DeleteCorrectiveAction(actor, action.ID))

		active, err := svc.GetCorrectiveActions(audit.ID, false, "", "")
		require.NoError(t, err)
		assert.Empty(t, active)

		deleted, err := svc.GetCorrectiveActions(audit.ID, true, "", "")
		require.NoError(t, err)
		require.Len(t, deleted, 1)
		assert.Equal(t, action.ID, deleted[0].ID)
	})

	t.Run("created timestamp survives the round trip", func(t *testing.T) {
		recovered, err := svc.RecoverCorrectiveAction(actor, action.ID)
		require.NoError(t, err)

		assert.False(t, recovered.IsDeleted)
		assert.WithinDuration(t, createdAt, recovered.CreatedAt, time.Second)

		active, err := svc.GetCorrectiveActions(audit.ID, false, "", "")
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})
}

func TestCorrectiveEffectiveStatus(t *testing.T) {
	now := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)

	t.Run("past target and not completed is overdue", func(t *testing.T) {
		a := models.CorrectiveAction{Status: models.CorrectiveStatusInProgress, TargetDate: now.AddDate(0, 0, -1)}
		assert.Equal(t, models.CorrectiveStatusOverdue, a.EffectiveStatus(now))
	})

	t.Run("completed never goes overdue", func(t *testing.T) {
		a := models.CorrectiveAction{Status: models.CorrectiveStatusCompleted, TargetDate: now.AddDate(0, 0, -30)}
		assert.Equal(t, models.CorrectiveStatusCompleted, a.EffectiveStatus(now))
	})
}
