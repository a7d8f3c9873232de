package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLog struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Kind            string    `gorm:"type:varchar(50);not null;index"`
	Actor           string    `gorm:"type:varchar(255);not null;index"`
	AffectedSubject *string   `gorm:"type:varchar(255);index"`
	Detail          datatypes.JSON
	OriginIp        *string   `gorm:"type:varchar(64)"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

type AppSetting struct {
	Key         string `gorm:"type:varchar(100);primaryKey"`
	Value       string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`
	UpdatedBy   string `gorm:"type:varchar(255)"`
	UpdatedAt   time.Time
}

func (AppSetting) TableName() string {
	return "app_settings"
}
