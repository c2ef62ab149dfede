package services

import (
	"errors"
	"fmt"
	"io"
	"path"
	"smartcomply/internal/models"
	"smartcomply/internal/storage"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrResponderNotFound = errors.New("form submission not found")
	ErrSnapshotMismatch  = errors.New("fill snapshot does not match the requested form")
	ErrNotConfirmed      = errors.New("fill snapshot has not passed preview")
	ErrValidationFailed  = errors.New("fill snapshot fails validation")
)

// FillState tracks where a snapshot sits in the fill workflow. Only a
// snapshot the server has validated and stamped PendingConfirmation can be
// committed.
type FillState string

const (
	FillStateFilling FillState = "Filling"
	FillStatePending FillState = "PendingConfirmation"
)

// FillElement is one form element plus the answers entered so far. The
// metadata fields are always rebuilt from the stored schema; only Answers
// is taken from the client.
type FillElement struct {
	ElementID   uint               `json:"element_id"`
	Label       string             `json:"label"`
	ElementType models.ElementType `json:"element_type"`
	Placeholder string             `json:"placeholder"`
	IsRequired  bool               `json:"is_required"`
	Options     []string           `json:"options"`
	Order       int                `json:"order"`
	Answers     []string           `json:"answers"`
}

// FillSnapshot is the in-progress state of one fill, carried by the client
// between steps. It is untrusted input: every resume re-validates it
// against the current schema and drops anything that no longer matches.
type FillSnapshot struct {
	FormID      uint          `json:"form_id"`
	AuditID     uint          `json:"audit_id"`
	ResponderID uint          `json:"responder_id"`
	IsEdit      bool          `json:"is_edit"`
	State       FillState     `json:"state"`
	Elements    []FillElement `json:"elements"`
}

// FieldError is one validation failure tied to a form element.
type FieldError struct {
	ElementID uint   `json:"element_id"`
	Label     string `json:"label"`
	Message   string `json:"message"`
}

// Upload is a file received alongside a preview request, keyed by the
// element it answers.
type Upload struct {
	Filename string
	Content  io.Reader
}

type ResponseService struct {
	store    storage.Store
	activity *ActivityService

	Now func() time.Time
}

func NewResponseService(store storage.Store) *ResponseService {
	return &ResponseService{
		store:    store,
		activity: NewActivityService(),
		Now:      time.Now,
	}
}

// loadFillForm fetches a fillable form with its elements in order.
func (s *ResponseService) loadFillForm(formID uint) (*models.Form, error) {
	var form models.Form
	if err := models.DB.Preload("Category").
		Preload("Elements", func(db *gorm.DB) *gorm.DB {
			return db.Order("form_elements.sort_order")
		}).First(&form, formID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	if form.Status != models.FormStatusPublished {
		return nil, ErrFormNotPublished
	}
	return &form, nil
}

// checkAudit verifies the audit exists and the actor may touch it.
func (s *ResponseService) checkAudit(actor models.Actor, auditID uint) (*models.Audit, error) {
	var audit models.Audit
	if err := models.DB.Preload("Staff").First(&audit, auditID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuditNotFound
		}
		return nil, err
	}
	var ownerBranch *uint
	if audit.Staff != nil {
		ownerBranch = audit.Staff.BranchID
	}
	if !Allows(actor, audit.StaffID, ownerBranch) {
		return nil, ErrForbidden
	}
	return &audit, nil
}

// canonicalize rebuilds a snapshot from the stored schema, keeping only
// the client's answers for elements that still exist. Answers for removed
// elements are silently dropped.
func canonicalize(form *models.Form, auditID uint, prior *FillSnapshot) *FillSnapshot {
	answers := map[uint][]string{}
	snap := &FillSnapshot{FormID: form.ID, AuditID: auditID, State: FillStateFilling}
	if prior != nil {
		for _, e := range prior.Elements {
			answers[e.ElementID] = e.Answers
		}
		snap.ResponderID = prior.ResponderID
		snap.IsEdit = prior.IsEdit
	}

	snap.Elements = make([]FillElement, 0, len(form.Elements))
	for _, el := range form.Elements {
		snap.Elements = append(snap.Elements, FillElement{
			ElementID:   el.ID,
			Label:       el.Label,
			ElementType: el.ElementType,
			Placeholder: el.Placeholder,
			IsRequired:  el.IsRequired,
			Options:     models.SplitAnswers(el.Options),
			Order:       el.Order,
			Answers:     answers[el.ID],
		})
	}
	return snap
}

// StartFill opens a form for filling within an audit. If the actor already
// submitted this form for this audit, the snapshot is prefilled from the
// stored answers and flagged as an edit.
func (s *ResponseService) StartFill(actor models.Actor, formID, auditID uint) (*FillSnapshot, error) {
	form, err := s.loadFillForm(formID)
	if err != nil {
		return nil, err
	}
	if _, err := s.checkAudit(actor, auditID); err != nil {
		return nil, err
	}

	var responder models.FormResponder
	err = models.DB.Where("form_id = ? AND audit_id = ? AND staff_id = ?", formID, auditID, actor.StaffID).
		Preload("Responses").First(&responder).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return canonicalize(form, auditID, nil), nil
	}

	return s.prefill(form, auditID, &responder), nil
}

// StartEdit reopens an existing submission regardless of who submitted it,
// the entry point for reviewers correcting a response.
func (s *ResponseService) StartEdit(actor models.Actor, formID, auditID uint) (*FillSnapshot, error) {
	form, err := s.loadFillForm(formID)
	if err != nil {
		return nil, err
	}
	if _, err := s.checkAudit(actor, auditID); err != nil {
		return nil, err
	}

	var responder models.FormResponder
	if err := models.DB.Where("form_id = ? AND audit_id = ?", formID, auditID).
		Preload("Responses").First(&responder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResponderNotFound
		}
		return nil, err
	}

	return s.prefill(form, auditID, &responder), nil
}

// prefill converts stored responses back into snapshot answers, splitting
// multi-value encodings.
func (s *ResponseService) prefill(form *models.Form, auditID uint, responder *models.FormResponder) *FillSnapshot {
	byElement := map[uint]string{}
	for _, r := range responder.Responses {
		byElement[r.ElementID] = r.Answer
	}

	prior := &FillSnapshot{
		FormID:      form.ID,
		AuditID:     auditID,
		ResponderID: responder.ID,
		IsEdit:      true,
	}
	for _, el := range form.Elements {
		answer, ok := byElement[el.ID]
		if !ok {
			continue
		}
		var answers []string
		if el.ElementType.IsMultiValue() {
			answers = models.SplitAnswers(answer)
		} else if answer != "" {
			answers = []string{answer}
		}
		prior.Elements = append(prior.Elements, FillElement{ElementID: el.ID, Answers: answers})
	}

	return canonicalize(form, auditID, prior)
}

// Resume re-validates a client-carried snapshot against the current
// schema, the step behind every "back" navigation.
func (s *ResponseService) Resume(actor models.Actor, snap *FillSnapshot) (*FillSnapshot, error) {
	form, err := s.loadFillForm(snap.FormID)
	if err != nil {
		return nil, err
	}
	if _, err := s.checkAudit(actor, snap.AuditID); err != nil {
		return nil, err
	}
	return canonicalize(form, snap.AuditID, snap), nil
}

// validate applies the per-type required rules. Layout elements never
// fail; a required Checkbox needs at least one selection; a required
// FileUpload needs a fresh upload or a previously stored path; everything
// else needs a non-blank first value.
func validate(snap *FillSnapshot, uploads map[uint]*Upload) []FieldError {
	var errs []FieldError
	for _, el := range snap.Elements {
		if !el.ElementType.IsInput() || !el.IsRequired {
			continue
		}

		switch {
		case el.ElementType.IsMultiValue():
			if len(el.Answers) == 0 {
				errs = append(errs, FieldError{el.ElementID, el.Label, "select at least one option"})
			}
		case el.ElementType.IsFile():
			if uploads[el.ElementID] == nil && (len(el.Answers) == 0 || el.Answers[0] == "") {
				errs = append(errs, FieldError{el.ElementID, el.Label, "a file is required"})
			}
		default:
			if len(el.Answers) == 0 || strings.TrimSpace(el.Answers[0]) == "" {
				errs = append(errs, FieldError{el.ElementID, el.Label, "this field is required"})
			}
		}
	}
	return errs
}

// Preview validates a snapshot and, if it passes, materializes any file
// uploads and stamps the snapshot PendingConfirmation. On validation
// failure the canonical snapshot comes back with the errors so the client
// can re-render without losing answers. Files are stored before commit, so
// an abandoned preview can leave unreferenced files behind.
func (s *ResponseService) Preview(actor models.Actor, snap *FillSnapshot, uploads map[uint]*Upload) (*FillSnapshot, []FieldError, error) {
	form, err := s.loadFillForm(snap.FormID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.checkAudit(actor, snap.AuditID); err != nil {
		return nil, nil, err
	}

	canonical := canonicalize(form, snap.AuditID, snap)
	if errs := validate(canonical, uploads); len(errs) > 0 {
		return canonical, errs, nil
	}

	for i := range canonical.Elements {
		el := &canonical.Elements[i]
		if !el.ElementType.IsFile() {
			continue
		}
		up := uploads[el.ElementID]
		if up == nil {
			continue
		}
		stored, err := s.store.Save(storage.FormFileDir, up.Content, path.Ext(up.Filename))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to store uploaded file: %w", err)
		}
		el.Answers = []string{stored}
	}

	canonical.State = FillStatePending
	return canonical, nil, nil
}

// Confirm commits a previewed snapshot. The PendingConfirmation stamp is
// client-carried and therefore untrusted: the required rules run again
// here, so a forged stamp cannot commit what Preview would have rejected.
// An edit replaces the previous answers atomically: the old response rows
// and the new ones never coexist outside the transaction. The responder's
// Name is snapshotted from the actor at commit time.
func (s *ResponseService) Confirm(actor models.Actor, snap *FillSnapshot) (*models.FormResponder, error) {
	if snap.State != FillStatePending {
		return nil, ErrNotConfirmed
	}

	form, err := s.loadFillForm(snap.FormID)
	if err != nil {
		return nil, err
	}
	if _, err := s.checkAudit(actor, snap.AuditID); err != nil {
		return nil, err
	}
	canonical := canonicalize(form, snap.AuditID, snap)
	if errs := validate(canonical, nil); len(errs) > 0 {
		return nil, ErrValidationFailed
	}
	canonical.State = FillStatePending

	var responder *models.FormResponder
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		now := s.Now().UTC()
		action := models.ActionAdd
		verb := "submitted"

		if canonical.IsEdit && canonical.ResponderID != 0 {
			var existing models.FormResponder
			if err := tx.First(&existing, canonical.ResponderID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrResponderNotFound
				}
				return err
			}
			if existing.FormID != canonical.FormID || existing.AuditID != canonical.AuditID {
				return ErrSnapshotMismatch
			}
			if err := tx.Where("responder_id = ?", existing.ID).
				Delete(&models.FormResponse{}).Error; err != nil {
				return err
			}
			existing.SubmittedAt = now
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			responder = &existing
			action = models.ActionUpdate
			verb = "updated the submission for"
		} else {
			staffID := actor.StaffID
			responder = &models.FormResponder{
				FormID:      canonical.FormID,
				AuditID:     canonical.AuditID,
				StaffID:     &staffID,
				BranchID:    actor.BranchID,
				Name:        actor.Name,
				SubmittedAt: now,
			}
			if err := tx.Create(responder).Error; err != nil {
				return err
			}
		}

		for _, el := range canonical.Elements {
			if !el.ElementType.IsInput() {
				continue
			}
			answer := ""
			if el.ElementType.IsMultiValue() {
				answer = models.JoinAnswers(el.Answers)
			} else if len(el.Answers) > 0 {
				answer = el.Answers[0]
			}
			response := models.FormResponse{
				ResponderID: responder.ID,
				ElementID:   el.ElementID,
				Answer:      answer,
			}
			if err := tx.Create(&response).Error; err != nil {
				return err
			}
		}

		return s.activity.RecordTx(tx, actor.StaffID, action,
			Describe(actor.Name, actor.StaffID,
				fmt.Sprintf("%s the form named %s", verb, form.Name)))
	})
	if err != nil {
		return nil, err
	}

	models.DB.Preload("Form").Preload("Responses").First(responder, responder.ID)
	return responder, nil
}

// GetResponder returns one submission with its answers joined to the
// current schema elements.
func (s *ResponseService) GetResponder(actor models.Actor, id uint) (*models.FormResponder, error) {
	var responder models.FormResponder
	if err := models.DB.Preload("Form").Preload("Form.Category").
		Preload("Staff").Preload("Branch").
		Preload("Responses").Preload("Responses.Element").
		First(&responder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResponderNotFound
		}
		return nil, err
	}

	if _, err := s.checkAudit(actor, responder.AuditID); err != nil {
		return nil, err
	}
	return &responder, nil
}
