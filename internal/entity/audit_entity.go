package entity

import (
	"time"

	"github.com/google/uuid"
)

// Audit log kinds.
const (
	AuditRequestCreated    = "request_created"
	AuditSupervisorDecided = "supervisor_decided"
	AuditParentDecided     = "parent_decided"
	AuditSocialWorkDecided = "social_work_decided"
	AuditMonitorAction     = "monitor_action"
	AuditParentLinkIssued  = "parent_link_issued"

	AuditUserCreated      = "user_created"
	AuditUserUpdated      = "user_updated"
	AuditUserDeactivated  = "user_deactivated"
	AuditPasswordChanged  = "password_changed"
	AuditConfigChanged    = "config_changed"
	AuditResetTokenIssued = "reset_token_issued"
	AuditResetTokenUsed   = "reset_token_used"
	AuditLoginSuccess     = "login_success"
	AuditLoginFailure     = "login_failure"
)

// AuditLog is one row in the generic audit trail, separate from the
// per-stage decision columns on the request itself.
type AuditLog struct {
	Id              uuid.UUID
	Kind            string
	Actor           string
	AffectedSubject *string
	Detail          map[string]interface{}
	OriginIP        *string
	CreatedAt       time.Time
}

// Setting is a runtime-adjustable configuration value.
type Setting struct {
	Key         string
	Value       string
	Description string
	UpdatedBy   string
	UpdatedAt   time.Time
}

// Configuration keys understood by the services.
const (
	SettingWeeklyRequestLimit = "weekly_request_limit"
	SettingResetTokenTTLHours = "reset_token_ttl_hours"
)
