package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateRequestRequest struct {
	AthleteName   string `json:"athlete_name" validate:"required,min=3"`
	Email         string `json:"email" validate:"required,email"`
	BirthDate     string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Phone         string `json:"phone" validate:"required,min=8"`
	Category      string `json:"category" validate:"required,oneof=Sub14 Sub15 Sub16 Sub17 Sub20"`
	GuardianName  string `json:"guardian_name" validate:"required,min=3"`
	GuardianPhone string `json:"guardian_phone" validate:"required,min=8"`

	DepartureDate     string `json:"departure_date" validate:"required,datetime=2006-01-02"`
	DepartureTime     string `json:"departure_time" validate:"required,datetime=15:04"`
	ReturnDate        string `json:"return_date" validate:"required,datetime=2006-01-02"`
	ReturnTime        string `json:"return_time" validate:"required,datetime=15:04"`
	ReasonDestination string `json:"reason_destination" validate:"required,min=3"`
}

// RequestOrigin is the caller metadata captured alongside a mutation.
// It comes from the transport layer, never from the request body.
type RequestOrigin struct {
	IP     string
	Device string
}

// LimitUsage tells the requester where they stand against the rolling
// weekly quota after this request was counted.
type LimitUsage struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

type CreateRequestResponse struct {
	Id            uuid.UUID  `json:"id"`
	PublicCode    string     `json:"public_code"`
	GeneralStatus string     `json:"general_status"`
	FinalStatus   string     `json:"final_status"`
	LimitInfo     LimitUsage `json:"limit_info"`
	CreatedAt     time.Time  `json:"created_at"`
}

// StageView is the audit trail of one approval stage.
type StageView struct {
	Status    string     `json:"status"`
	Note      *string    `json:"note,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	DecidedBy *string    `json:"decided_by,omitempty"`
}

type RequestResponse struct {
	Id         uuid.UUID `json:"id"`
	PublicCode string    `json:"public_code"`

	AthleteName   string `json:"athlete_name"`
	Email         string `json:"email"`
	BirthDate     string `json:"birth_date"`
	Phone         string `json:"phone"`
	Category      string `json:"category"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`

	DepartureDate     string `json:"departure_date"`
	DepartureTime     string `json:"departure_time"`
	ReturnDate        string `json:"return_date"`
	ReturnTime        string `json:"return_time"`
	ReasonDestination string `json:"reason_destination"`

	Supervisor StageView `json:"supervisor"`
	Parent     StageView `json:"parent"`
	SocialWork StageView `json:"social_work"`

	MonitorStatus        string     `json:"monitor_status"`
	MonitorNote          *string    `json:"monitor_note,omitempty"`
	DepartureConfirmedAt *time.Time `json:"departure_confirmed_at,omitempty"`
	ReturnConfirmedAt    *time.Time `json:"return_confirmed_at,omitempty"`
	ArchivedAt           *time.Time `json:"archived_at,omitempty"`

	GeneralStatus string    `json:"general_status"`
	FinalStatus   string    `json:"final_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PublicRequestResponse is the reduced view returned on unauthenticated
// code lookup. It omits contacts and the per-stage audit trail.
type PublicRequestResponse struct {
	PublicCode    string    `json:"public_code"`
	AthleteName   string    `json:"athlete_name"`
	Category      string    `json:"category"`
	DepartureDate string    `json:"departure_date"`
	DepartureTime string    `json:"departure_time"`
	ReturnDate    string    `json:"return_date"`
	ReturnTime    string    `json:"return_time"`
	GeneralStatus string    `json:"general_status"`
	FinalStatus   string    `json:"final_status"`
	CreatedAt     time.Time `json:"created_at"`
}

type ListRequestsQuery struct {
	Status   string `query:"status"`
	Category string `query:"category"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}

// AttendanceReportQuery selects the instant the roll call is evaluated
// at. Both fields default to now when absent.
type AttendanceReportQuery struct {
	Date string `query:"date" validate:"omitempty,datetime=2006-01-02"`
	Time string `query:"time" validate:"omitempty,datetime=15:04"`
}

// AttendanceEntry classifies one outstanding trip for the monitor desk.
type AttendanceEntry struct {
	Id            uuid.UUID `json:"id"`
	PublicCode    string    `json:"public_code"`
	AthleteName   string    `json:"athlete_name"`
	Category      string    `json:"category"`
	DepartureDate string    `json:"departure_date"`
	DepartureTime string    `json:"departure_time"`
	ReturnDate    string    `json:"return_date"`
	ReturnTime    string    `json:"return_time"`
	Situation     string    `json:"situation"`
}

type AttendanceReportResponse struct {
	ReportDate  string            `json:"report_date"`
	ReportTime  string            `json:"report_time"`
	Total       int               `json:"total"`
	GeneratedAt time.Time         `json:"generated_at"`
	Entries     []AttendanceEntry `json:"entries"`
}
