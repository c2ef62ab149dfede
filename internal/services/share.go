package services

import (
	"errors"
	"fmt"
	"smartcomply/internal/config"
	"smartcomply/internal/models"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidShareToken = errors.New("invalid or revoked share token")

type ShareService struct {
	cfg      *config.Config
	activity *ActivityService
}

func NewShareService(cfg *config.Config) *ShareService {
	return &ShareService{cfg: cfg, activity: NewActivityService()}
}

// IssueToken mints a fresh share token for an audit, replacing any
// previous one. Rotation is the revocation mechanism: old links stop
// resolving the moment a new token is issued.
func (s *ShareService) IssueToken(actor models.Actor, auditID uint) (string, error) {
	var audit models.Audit
	if err := models.DB.First(&audit, auditID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrAuditNotFound
		}
		return "", err
	}

	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	audit.ShareToken = &token
	if err := models.DB.Save(&audit).Error; err != nil {
		return "", err
	}

	s.activity.Record(actor.StaffID, models.ActionAdd,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("generated a share link for the audit named %s", audit.Name)))

	return token, nil
}

// ShareURL builds the external link a token resolves to
func (s *ShareService) ShareURL(token string) string {
	return fmt.Sprintf("%s/external/audits/%s", strings.TrimRight(s.cfg.External.BaseURL, "/"), token)
}

// ResolveAudit resolves a token to its audit for the external read-only
// view, with submissions and active corrective actions preloaded.
func (s *ShareService) ResolveAudit(token string) (*models.Audit, []models.CorrectiveAction, error) {
	if token == "" {
		return nil, nil, ErrInvalidShareToken
	}

	var audit models.Audit
	if err := models.DB.Where("share_token = ?", token).
		Preload("Category").Preload("Staff").Preload("Staff.Branch").
		Preload("FormResponders").Preload("FormResponders.Form").
		First(&audit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidShareToken
		}
		return nil, nil, err
	}

	var actions []models.CorrectiveAction
	if err := models.DB.Where("audit_id = ? AND is_deleted = ?", audit.ID, false).
		Order("created_at DESC").Find(&actions).Error; err != nil {
		return nil, nil, err
	}

	return &audit, actions, nil
}

// ResolveResponder resolves a submission through a token. The responder
// must belong to the token's audit; IDs from other audits do not resolve,
// a token is not a skeleton key.
func (s *ShareService) ResolveResponder(token string, responderID uint) (*models.FormResponder, error) {
	audit, _, err := s.ResolveAudit(token)
	if err != nil {
		return nil, err
	}

	var responder models.FormResponder
	if err := models.DB.Where("id = ? AND audit_id = ?", responderID, audit.ID).
		Preload("Form").Preload("Staff").Preload("Branch").
		Preload("Responses").Preload("Responses.Element").
		First(&responder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResponderNotFound
		}
		return nil, err
	}

	return &responder, nil
}

// ResolveCorrectiveAction resolves a corrective action through a token,
// with the same audit-membership check as ResolveResponder.
func (s *ShareService) ResolveCorrectiveAction(token string, actionID uint) (*models.CorrectiveAction, error) {
	audit, _, err := s.ResolveAudit(token)
	if err != nil {
		return nil, err
	}

	var action models.CorrectiveAction
	if err := models.DB.Where("id = ? AND audit_id = ?", actionID, audit.ID).
		First(&action).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActionNotFound
		}
		return nil, err
	}

	return &action, nil
}
