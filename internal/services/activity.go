package services

import (
	"fmt"
	"smartcomply/internal/models"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// utc8 is the display and scheduling offset for the whole application.
// Stored timestamps remain UTC; this is applied at the edges only.
var utc8 = time.FixedZone("UTC+8", 8*60*60)

type ActivityService struct{}

func NewActivityService() *ActivityService {
	return &ActivityService{}
}

// Describe builds the canonical subject prefix used in log descriptions.
// Keeping the "(ID: n)" marker in the text is what lets readers later
// recognize their own entries.
func Describe(staffName string, staffID uint, rest string) string {
	return fmt.Sprintf("Staff %s (ID: %d) %s", staffName, staffID, rest)
}

// Record appends a log entry. Logging is best-effort: a failed write is
// reported but never fails the operation that triggered it.
func (s *ActivityService) Record(staffID uint, action models.ActionType, description string) {
	if err := s.RecordTx(models.DB, staffID, action, description); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"staff_id": staffID,
			"action":   action,
		}).Warn("Failed to write activity log")
	}
}

// RecordTx appends a log entry inside an existing transaction so the entry
// commits or rolls back together with the change it describes.
func (s *ActivityService) RecordTx(tx *gorm.DB, staffID uint, action models.ActionType, description string) error {
	entry := &models.ActivityLog{
		StaffID:     staffID,
		Timestamp:   time.Now().UTC(),
		ActionType:  action,
		Description: description,
	}
	return tx.Create(entry).Error
}

// ActivityEntry is one display-ready log line.
type ActivityEntry struct {
	ID          uint              `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	ActionType  models.ActionType `json:"action_type"`
	Description string            `json:"description"`
	StaffName   string            `json:"staff_name"`
	IsOwn       bool              `json:"is_own"`
}

// ActivityGroup is one day's worth of entries, newest day first.
type ActivityGroup struct {
	Label   string          `json:"label"`
	Date    string          `json:"date"`
	Entries []ActivityEntry `json:"entries"`
}

// List returns the activity feed the actor may see, grouped by day in
// UTC+8. Entries authored by the actor get their own subject prefix
// replaced with "You".
func (s *ActivityService) List(actor models.Actor, actionFilter string, searchTerm string) ([]ActivityGroup, error) {
	q := ScopeActivityLogs(models.DB.Model(&models.ActivityLog{}), actor)
	if actionFilter != "" {
		q = q.Where("activity_logs.action_type = ?", actionFilter)
	}
	if searchTerm != "" {
		q = q.Where("activity_logs.description LIKE ?", "%"+searchTerm+"%")
	}

	var logs []models.ActivityLog
	if err := q.Preload("Staff").Order("activity_logs.timestamp DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	today := time.Now().In(utc8)
	yesterday := today.AddDate(0, 0, -1)

	var groups []ActivityGroup
	for _, l := range logs {
		local := l.Timestamp.In(utc8)

		entry := ActivityEntry{
			ID:          l.ID,
			Timestamp:   local,
			ActionType:  l.ActionType,
			Description: l.Description,
			IsOwn:       l.StaffID == actor.StaffID,
		}
		if l.Staff != nil {
			entry.StaffName = l.Staff.Name
		}
		if entry.IsOwn {
			prefix := fmt.Sprintf("Staff %s (ID: %d)", entry.StaffName, l.StaffID)
			if strings.HasPrefix(entry.Description, prefix) {
				entry.Description = "You" + strings.TrimPrefix(entry.Description, prefix)
			}
		}

		label := local.Format("02 Jan 2006")
		switch {
		case sameDay(local, today):
			label = "Today"
		case sameDay(local, yesterday):
			label = "Yesterday"
		}

		date := local.Format("2006-01-02")
		if n := len(groups); n > 0 && groups[n-1].Date == date {
			groups[n-1].Entries = append(groups[n-1].Entries, entry)
		} else {
			groups = append(groups, ActivityGroup{Label: label, Date: date, Entries: []ActivityEntry{entry}})
		}
	}

	return groups, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
