package services

import (
	"smartcomply/internal/models"
	"time"
)

type DashboardService struct {
	Now func() time.Time
}

func NewDashboardService() *DashboardService {
	return &DashboardService{Now: time.Now}
}

// StatusCounts buckets audits by effective status.
type StatusCounts struct {
	Draft    int64 `json:"draft"`
	Done     int64 `json:"done"`
	Rejected int64 `json:"rejected"`
	Overdue  int64 `json:"overdue"`
}

func (s *DashboardService) countStatuses(audits []models.Audit) StatusCounts {
	now := s.Now()
	var c StatusCounts
	for _, a := range audits {
		switch a.EffectiveStatus(now) {
		case models.AuditStatusDraft:
			c.Draft++
		case models.AuditStatusDone:
			c.Done++
		case models.AuditStatusRejected:
			c.Rejected++
		case models.AuditStatusOverdue:
			c.Overdue++
		}
	}
	return c
}

type AdminOverview struct {
	StaffCount    int64        `json:"staff_count"`
	BranchCount   int64        `json:"branch_count"`
	CategoryCount int64        `json:"category_count"`
	FormCount     int64        `json:"form_count"`
	AuditCount    int64        `json:"audit_count"`
	Audits        StatusCounts `json:"audits"`
}

// GetAdminOverview returns the system-wide headline numbers
func (s *DashboardService) GetAdminOverview() (*AdminOverview, error) {
	var o AdminOverview
	models.DB.Model(&models.Staff{}).Count(&o.StaffCount)
	models.DB.Model(&models.Branch{}).Count(&o.BranchCount)
	models.DB.Model(&models.ComplianceCategory{}).Count(&o.CategoryCount)
	models.DB.Model(&models.Form{}).Count(&o.FormCount)

	var audits []models.Audit
	if err := models.DB.Find(&audits).Error; err != nil {
		return nil, err
	}
	o.AuditCount = int64(len(audits))
	o.Audits = s.countStatuses(audits)
	return &o, nil
}

type CategoryDistribution struct {
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
	FormCount    int64  `json:"form_count"`
	AuditCount   int64  `json:"audit_count"`
}

// GetCategoryDistribution returns form and audit counts per category
func (s *DashboardService) GetCategoryDistribution() ([]CategoryDistribution, error) {
	var categories []models.ComplianceCategory
	if err := models.DB.Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}

	dist := make([]CategoryDistribution, 0, len(categories))
	for _, c := range categories {
		d := CategoryDistribution{CategoryID: c.ID, CategoryName: c.Name}
		models.DB.Model(&models.Form{}).Where("category_id = ?", c.ID).Count(&d.FormCount)
		models.DB.Model(&models.Audit{}).Where("category_id = ?", c.ID).Count(&d.AuditCount)
		dist = append(dist, d)
	}
	return dist, nil
}

type AuditorPerformance struct {
	StaffID   uint         `json:"staff_id"`
	StaffName string       `json:"staff_name"`
	Audits    StatusCounts `json:"audits"`
}

// GetAuditorPerformance returns per-auditor audit counts for the manager's
// branch.
func (s *DashboardService) GetAuditorPerformance(actor models.Actor) ([]AuditorPerformance, error) {
	if actor.BranchID == nil {
		return nil, nil
	}

	var auditors []models.Staff
	if err := models.DB.Where("branch_id = ? AND is_active = ?", *actor.BranchID, true).
		Order("name").Find(&auditors).Error; err != nil {
		return nil, err
	}

	perf := make([]AuditorPerformance, 0, len(auditors))
	for _, a := range auditors {
		var audits []models.Audit
		if err := models.DB.Where("staff_id = ?", a.ID).Find(&audits).Error; err != nil {
			return nil, err
		}
		perf = append(perf, AuditorPerformance{
			StaffID:   a.ID,
			StaffName: a.Name,
			Audits:    s.countStatuses(audits),
		})
	}
	return perf, nil
}

// GetComplianceSummary returns audit status counts for the actor's visible
// audits in one category.
func (s *DashboardService) GetComplianceSummary(actor models.Actor, categoryID uint) (*StatusCounts, error) {
	q := ScopeAudits(models.DB.Model(&models.Audit{}), actor)
	if categoryID != 0 {
		q = q.Where("audits.category_id = ?", categoryID)
	}

	var audits []models.Audit
	if err := q.Find(&audits).Error; err != nil {
		return nil, err
	}
	counts := s.countStatuses(audits)
	return &counts, nil
}

type UserOverview struct {
	Audits    StatusCounts   `json:"audits"`
	Upcoming  []models.Audit `json:"upcoming"`
	Submitted int64          `json:"submitted"`
}

// GetUserOverview returns the actor's own audit counts plus the audits due
// within the next seven days that are still open.
func (s *DashboardService) GetUserOverview(actor models.Actor) (*UserOverview, error) {
	var audits []models.Audit
	if err := models.DB.Where("staff_id = ?", actor.StaffID).
		Preload("Category").Find(&audits).Error; err != nil {
		return nil, err
	}

	o := &UserOverview{Audits: s.countStatuses(audits)}

	now := s.Now()
	horizon := now.AddDate(0, 0, 7)
	for _, a := range audits {
		if a.Status != models.AuditStatusDone && a.DueDate.After(now) && a.DueDate.Before(horizon) {
			o.Upcoming = append(o.Upcoming, a)
		}
	}

	models.DB.Model(&models.FormResponder{}).Where("staff_id = ?", actor.StaffID).Count(&o.Submitted)
	return o, nil
}
