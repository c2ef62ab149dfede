package handlers

import (
	"errors"
	"smartcomply/internal/api/middleware"
	"smartcomply/internal/config"
	"smartcomply/internal/qr"
	"smartcomply/internal/services"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ExternalHandler serves the share-token surface: issuing links for
// audits and resolving them for anonymous external auditors.
type ExternalHandler struct {
	shareService *services.ShareService
}

func NewExternalHandler(cfg *config.Config) *ExternalHandler {
	return &ExternalHandler{
		shareService: services.NewShareService(cfg),
	}
}

func (h *ExternalHandler) shareError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidShareToken):
		c.JSON(404, gin.H{"error": "Invalid or revoked share link"})
	case errors.Is(err, services.ErrAuditNotFound):
		c.JSON(404, gin.H{"error": "Audit not found"})
	case errors.Is(err, services.ErrResponderNotFound):
		c.JSON(404, gin.H{"error": "Submission not found"})
	case errors.Is(err, services.ErrActionNotFound):
		c.JSON(404, gin.H{"error": "Corrective action not found"})
	default:
		c.JSON(500, gin.H{"error": "Failed to resolve share link"})
	}
}

// IssueShareLink mints a new share token for an audit and returns the
// link. Old links stop working immediately.
func (h *ExternalHandler) IssueShareLink(c *gin.Context) {
	auditID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid audit ID"})
		return
	}

	token, err := h.shareService.IssueToken(middleware.Actor(c), uint(auditID))
	if err != nil {
		h.shareError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"token": token,
		"url":   h.shareService.ShareURL(token),
	})
}

// GetShareQR renders the share link as a QR code PNG, minting a fresh
// token in the process.
func (h *ExternalHandler) GetShareQR(c *gin.Context) {
	auditID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid audit ID"})
		return
	}

	token, err := h.shareService.IssueToken(middleware.Actor(c), uint(auditID))
	if err != nil {
		h.shareError(c, err)
		return
	}

	// Size is caller-controlled; keep it inside a range the encoder can
	// render without an outsized allocation.
	size := 512
	if v, err := strconv.Atoi(c.Query("size")); err == nil {
		size = min(max(v, 64), 2048)
	}

	png, err := qr.PNG(h.shareService.ShareURL(token), size)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.Data(200, "image/png", png)
}

// GetExternalAudit resolves a share token to its audit view
func (h *ExternalHandler) GetExternalAudit(c *gin.Context) {
	audit, actions, err := h.shareService.ResolveAudit(c.Param("token"))
	if err != nil {
		h.shareError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"audit":              audit,
		"effective_status":   audit.EffectiveStatus(time.Now()),
		"corrective_actions": actions,
	})
}

// GetExternalResponder resolves a submission through a share token
func (h *ExternalHandler) GetExternalResponder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid submission ID"})
		return
	}

	responder, err := h.shareService.ResolveResponder(c.Param("token"), uint(id))
	if err != nil {
		h.shareError(c, err)
		return
	}

	c.JSON(200, responder)
}

// GetExternalCorrectiveAction resolves a corrective action through a share
// token
func (h *ExternalHandler) GetExternalCorrectiveAction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid corrective action ID"})
		return
	}

	action, err := h.shareService.ResolveCorrectiveAction(c.Param("token"), uint(id))
	if err != nil {
		h.shareError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"action":           action,
		"effective_status": action.EffectiveStatus(time.Now()),
	})
}
