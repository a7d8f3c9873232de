package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuthorizationRequest struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PublicCode string    `gorm:"type:varchar(40);uniqueIndex;not null"`

	AthleteName   string `gorm:"type:varchar(255);not null;index"`
	Email         string `gorm:"type:varchar(255);not null"`
	BirthDate     string `gorm:"type:varchar(10);not null"`
	Phone         string `gorm:"type:varchar(20);not null"`
	Category      string `gorm:"type:varchar(10);not null;index"`
	GuardianName  string `gorm:"type:varchar(255);not null"`
	GuardianPhone string `gorm:"type:varchar(20);not null"`

	DepartureDate     string `gorm:"type:varchar(10);not null"`
	DepartureTime     string `gorm:"type:varchar(5);not null"`
	ReturnDate        string `gorm:"type:varchar(10);not null"`
	ReturnTime        string `gorm:"type:varchar(5);not null"`
	ReasonDestination string `gorm:"type:text;not null"`
	DeviceInfo        datatypes.JSON

	StatusSupervisor    string `gorm:"type:varchar(20);not null;default:'Pending'"`
	SupervisorNote      *string
	SupervisorDecidedAt *time.Time
	SupervisorDecidedBy *string `gorm:"type:varchar(255)"`
	SupervisorIp        *string `gorm:"type:varchar(64)"`
	SupervisorDevice    *string `gorm:"type:text"`

	StatusParent         string `gorm:"type:varchar(20);not null;default:'Pending'"`
	ParentNote           *string
	ParentDecidedAt      *time.Time
	ParentIp             *string `gorm:"type:varchar(64)"`
	ParentDevice         *string `gorm:"type:text"`
	ParentToken          *string `gorm:"type:varchar(80);index"`
	ParentTokenExpiresAt *time.Time

	StatusSocialWork    string `gorm:"type:varchar(20);not null;default:'Pending'"`
	SocialWorkNote      *string
	SocialWorkDecidedAt *time.Time
	SocialWorkDecidedBy *string `gorm:"type:varchar(255)"`
	SocialWorkIp        *string `gorm:"type:varchar(64)"`
	SocialWorkDevice    *string `gorm:"type:text"`

	StatusMonitor        string `gorm:"type:varchar(20);not null;default:'Pending'"`
	MonitorNote          *string
	DepartureConfirmedAt *time.Time
	ReturnConfirmedAt    *time.Time
	ArchivedAt           *time.Time

	GeneralStatus string `gorm:"type:varchar(40);not null;index"`
	FinalStatus   string `gorm:"type:varchar(20);not null;index"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (AuthorizationRequest) TableName() string {
	return "authorization_requests"
}
