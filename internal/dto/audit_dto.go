package dto

import "time"

// AuditTrailMessage is the payload published on the audit topic and
// consumed asynchronously into the audit_logs table.
type AuditTrailMessage struct {
	Kind            string                 `json:"kind"`
	Actor           string                 `json:"actor"`
	AffectedSubject *string                `json:"affected_subject,omitempty"`
	Detail          map[string]interface{} `json:"detail,omitempty"`
	OriginIP        *string                `json:"origin_ip,omitempty"`
	OccurredAt      time.Time              `json:"occurred_at"`
}
