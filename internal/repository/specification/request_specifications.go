package specification

import (
	"leave-auth-be/internal/entity"

	"gorm.io/gorm"
)

// ByPublicCode filters by the shareable request code.
type ByPublicCode struct {
	Code string
}

func (s ByPublicCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("public_code = ?", s.Code)
}

// ByRequesterName filters by the declared athlete name. This is the
// rate-limiter key; it is a declared value, not a stable identity.
type ByRequesterName struct {
	Name string
}

func (s ByRequesterName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("athlete_name = ?", s.Name)
}

// ByCategory filters by athlete category.
type ByCategory struct {
	Category entity.Category
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}

// AwaitingSocialWork selects requests the social-work desk still has work
// on: supervisor approved, and either the parent response or the
// social-work decision is outstanding.
type AwaitingSocialWork struct{}

func (s AwaitingSocialWork) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status_supervisor = ?", entity.ApprovalApproved).
		Where("status_social_work = ? OR status_parent = ?", entity.ApprovalPending, entity.ApprovalPending)
}

// AwaitingMonitor selects fully approved requests still in the monitor's
// departure/return/archive flow.
type AwaitingMonitor struct{}

func (s AwaitingMonitor) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status_social_work = ?", entity.ApprovalApproved).
		Where("status_monitor IN ?", []entity.MonitorStatus{entity.MonitorPending, entity.MonitorDeparted, entity.MonitorReturned})
}
