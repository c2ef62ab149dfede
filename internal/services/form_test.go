package services

import (
	"smartcomply/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormLifecycle(t *testing.T) {
	setupTestDB(t)

	category := createTestCategory(t, "Fire Safety")
	admin := createTestStaff(t, "admin", models.RoleAdmin, nil)

	svc := NewFormService()
	actor := actorFor(admin)

	elements := []FormElementData{
		{Label: "Notes", ElementType: models.ElementTextInput, IsRequired: true},
		{Label: "Areas", ElementType: models.ElementCheckbox, Options: []string{"A", "B"}},
	}

	t.Run("new forms start in Editing", func(t *testing.T) {
		form, err := svc.CreateForm(actor, &SaveFormData{
			Name:       "Checklist",
			CategoryID: category.ID,
			Elements:   elements,
		})
		require.NoError(t, err)

		assert.Equal(t, models.FormStatusEditing, form.Status)
		require.Len(t, form.Elements, 2)
		assert.Equal(t, 1, form.Elements[0].Order)
		assert.Equal(t, "A,B", form.Elements[1].Options)
	})

	t.Run("form without elements is rejected", func(t *testing.T) {
		_, err := svc.CreateForm(actor, &SaveFormData{Name: "Empty", CategoryID: category.ID})
		assert.ErrorIs(t, err, ErrNoElements)
	})

	t.Run("choice element without options is rejected", func(t *testing.T) {
		_, err := svc.CreateForm(actor, &SaveFormData{
			Name:       "Bad",
			CategoryID: category.ID,
			Elements:   []FormElementData{{Label: "Pick", ElementType: models.ElementDropdown}},
		})
		assert.ErrorIs(t, err, ErrBadElement)
	})

	t.Run("unknown element type is rejected", func(t *testing.T) {
		_, err := svc.CreateForm(actor, &SaveFormData{
			Name:       "Bad",
			CategoryID: category.ID,
			Elements:   []FormElementData{{Label: "Sign", ElementType: "Signature"}},
		})
		assert.ErrorIs(t, err, ErrBadElement)
	})
}

func TestFormStatusTransitions(t *testing.T) {
	setupTestDB(t)

	category := createTestCategory(t, "Fire Safety")
	admin := createTestStaff(t, "admin", models.RoleAdmin, nil)

	svc := NewFormService()
	actor := actorFor(admin)

	create := func(t *testing.T) *models.Form {
		form, err := svc.CreateForm(actor, &SaveFormData{
			Name:       "Checklist",
			CategoryID: category.ID,
			Elements: []FormElementData{
				{Label: "Notes", ElementType: models.ElementTextInput},
			},
		})
		require.NoError(t, err)
		return form
	}

	t.Run("publishing an update sets Published", func(t *testing.T) {
		form := create(t)
		updated, err := svc.UpdateForm(actor, form.ID, &SaveFormData{
			Elements: []FormElementData{
				{Label: "Notes", ElementType: models.ElementTextInput},
				{Label: "Extra", ElementType: models.ElementTextArea},
			},
		}, true)
		require.NoError(t, err)

		assert.Equal(t, models.FormStatusPublished, updated.Status)
		assert.Len(t, updated.Elements, 2)
	})

	t.Run("a plain save sets Revised", func(t *testing.T) {
		form := create(t)
		updated, err := svc.UpdateForm(actor, form.ID, &SaveFormData{
			Elements: []FormElementData{
				{Label: "Renamed", ElementType: models.ElementTextInput},
			},
		}, false)
		require.NoError(t, err)

		assert.Equal(t, models.FormStatusRevised, updated.Status)
	})

	t.Run("toggle swaps Published and Hidden", func(t *testing.T) {
		form := create(t)
		_, err := svc.PublishForm(actor, form.ID)
		require.NoError(t, err)

		hidden, err := svc.ToggleFormVisibility(actor, form.ID)
		require.NoError(t, err)
		assert.Equal(t, models.FormStatusHidden, hidden.Status)

		visible, err := svc.ToggleFormVisibility(actor, form.ID)
		require.NoError(t, err)
		assert.Equal(t, models.FormStatusPublished, visible.Status)
	})

	t.Run("toggle on an Editing form is rejected", func(t *testing.T) {
		form := create(t)
		_, err := svc.ToggleFormVisibility(actor, form.ID)
		assert.ErrorIs(t, err, ErrFormNotPublished)
	})

	t.Run("hidden forms drop out of the fillable list", func(t *testing.T) {
		form := create(t)
		_, err := svc.PublishForm(actor, form.ID)
		require.NoError(t, err)

		available, err := svc.AvailableForms(category.ID)
		require.NoError(t, err)
		ids := make([]uint, 0, len(available))
		for _, f := range available {
			ids = append(ids, f.ID)
		}
		assert.Contains(t, ids, form.ID)

		_, err = svc.ToggleFormVisibility(actor, form.ID)
		require.NoError(t, err)

		available, err = svc.AvailableForms(category.ID)
		require.NoError(t, err)
		for _, f := range available {
			assert.NotEqual(t, form.ID, f.ID)
		}
	})
}
