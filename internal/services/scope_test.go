package services

import (
	"smartcomply/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllows(t *testing.T) {
	branchA := uint(1)
	branchB := uint(2)
	owner := uint(10)

	admin := models.Actor{StaffID: 1, Role: models.RoleAdmin}
	manager := models.Actor{StaffID: 2, Role: models.RoleManager, BranchID: &branchA}
	user := models.Actor{StaffID: owner, Role: models.RoleUser, BranchID: &branchA}

	t.Run("admin sees everything", func(t *testing.T) {
		assert.True(t, Allows(admin, &owner, &branchB))
		assert.True(t, Allows(admin, nil, nil))
	})

	t.Run("manager sees own branch", func(t *testing.T) {
		assert.True(t, Allows(manager, &owner, &branchA))
		assert.False(t, Allows(manager, &owner, &branchB))
	})

	t.Run("manager sees own records outside branch", func(t *testing.T) {
		managerID := manager.StaffID
		assert.True(t, Allows(manager, &managerID, &branchB))
	})

	t.Run("user sees only own records", func(t *testing.T) {
		assert.True(t, Allows(user, &owner, &branchA))
		other := uint(99)
		assert.False(t, Allows(user, &other, &branchA))
	})

	t.Run("every admin-visible record stays visible as scope widens", func(t *testing.T) {
		// Whatever a user may see, a manager of the same branch may see;
		// whatever a manager may see, an admin may see.
		cases := []struct {
			staffID  *uint
			branchID *uint
		}{
			{&owner, &branchA},
			{&owner, &branchB},
			{nil, &branchA},
			{nil, nil},
		}
		managerSameBranch := models.Actor{StaffID: owner, Role: models.RoleManager, BranchID: &branchA}
		for _, c := range cases {
			if Allows(user, c.staffID, c.branchID) {
				assert.True(t, Allows(managerSameBranch, c.staffID, c.branchID))
			}
			if Allows(manager, c.staffID, c.branchID) {
				assert.True(t, Allows(admin, c.staffID, c.branchID))
			}
		}
	})

	t.Run("unknown role fails closed", func(t *testing.T) {
		unknown := models.Actor{StaffID: 5, Role: "Superuser", BranchID: &branchA}
		assert.False(t, Allows(unknown, &owner, &branchA))
	})

	t.Run("zero actor fails closed", func(t *testing.T) {
		assert.False(t, Allows(models.Actor{}, &owner, &branchA))
	})
}

func TestScopeAudits(t *testing.T) {
	setupTestDB(t)

	branchA := createTestBranch(t, "Branch A")
	branchB := createTestBranch(t, "Branch B")
	category := createTestCategory(t, "Fire Safety")

	managerA := createTestStaff(t, "manager-a", models.RoleManager, &branchA.ID)
	auditorA1 := createTestStaff(t, "auditor-a1", models.RoleUser, &branchA.ID)
	auditorA2 := createTestStaff(t, "auditor-a2", models.RoleUser, &branchA.ID)
	auditorB := createTestStaff(t, "auditor-b", models.RoleUser, &branchB.ID)

	a1 := createTestAudit(t, auditorA1.ID, category.ID)
	a2 := createTestAudit(t, auditorA2.ID, category.ID)
	b1 := createTestAudit(t, auditorB.ID, category.ID)

	auditIDs := func(audits []models.Audit) []uint {
		ids := make([]uint, 0, len(audits))
		for _, a := range audits {
			ids = append(ids, a.ID)
		}
		return ids
	}

	t.Run("manager sees all audits of own branch", func(t *testing.T) {
		var audits []models.Audit
		err := ScopeAudits(models.DB.Model(&models.Audit{}), actorFor(managerA)).Find(&audits).Error
		require.NoError(t, err)

		ids := auditIDs(audits)
		assert.ElementsMatch(t, []uint{a1.ID, a2.ID}, ids)
		assert.NotContains(t, ids, b1.ID)
	})

	t.Run("user sees only own audits", func(t *testing.T) {
		var audits []models.Audit
		err := ScopeAudits(models.DB.Model(&models.Audit{}), actorFor(auditorA1)).Find(&audits).Error
		require.NoError(t, err)

		assert.Equal(t, []uint{a1.ID}, auditIDs(audits))
	})

	t.Run("admin sees all audits", func(t *testing.T) {
		admin := createTestStaff(t, "admin", models.RoleAdmin, nil)

		var audits []models.Audit
		err := ScopeAudits(models.DB.Model(&models.Audit{}), actorFor(admin)).Find(&audits).Error
		require.NoError(t, err)

		assert.Len(t, audits, 3)
	})

	t.Run("unknown role sees nothing", func(t *testing.T) {
		unknown := models.Actor{StaffID: 999, Role: "Superuser", BranchID: &branchA.ID}

		var audits []models.Audit
		err := ScopeAudits(models.DB.Model(&models.Audit{}), unknown).Find(&audits).Error
		require.NoError(t, err)

		assert.Empty(t, audits)
	})
}
